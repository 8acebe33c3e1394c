package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/fashion_store/internal/repo"
	"github.com/Skotchmaster/fashion_store/internal/storetest"
	"github.com/Skotchmaster/fashion_store/pkg/events"
)

func TestContactService(t *testing.T) {
	rec := &events.Recorder{}
	svc := &ContactService{Repo: repo.New(storetest.Open(t)), Events: rec}
	ctx := context.Background()

	assert.ErrorIs(t, svc.SendMessage(ctx, "Ann", "", "hello"), ErrValidation)
	require.NoError(t, svc.SendMessage(ctx, "Ann", "ann@example.com", "hello"))

	assert.ErrorIs(t, svc.Subscribe(ctx, " "), ErrValidation)
	require.NoError(t, svc.Subscribe(ctx, "Ann@Example.com"))
	assert.ErrorIs(t, svc.Subscribe(ctx, "ann@example.com"), ErrConflict)

	assert.Len(t, rec.Events(events.TopicContact), 2)
}
