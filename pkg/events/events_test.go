package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_FiltersByTopic(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()

	require.NoError(t, r.PublishEvent(ctx, TopicCart, "1", map[string]any{"type": "cart_item_added"}))
	require.NoError(t, r.PublishEvent(ctx, TopicProduct, "2", map[string]any{"type": "product_created"}))

	cart := r.Events(TopicCart)
	require.Len(t, cart, 1)
	assert.Equal(t, "1", cart[0].Key)
	assert.Len(t, r.Events(""), 2)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	require.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishEvent(context.Background(), TopicUser, "k", nil))
	assert.NoError(t, p.Close())
}
