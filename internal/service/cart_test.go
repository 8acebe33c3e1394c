package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/fashion_store/internal/models"
	"github.com/Skotchmaster/fashion_store/internal/repo"
	"github.com/Skotchmaster/fashion_store/internal/storetest"
	"github.com/Skotchmaster/fashion_store/pkg/events"
)

type cartFixture struct {
	svc    *CartService
	db     *gorm.DB
	events *events.Recorder
	reg    *prometheus.Registry
	alice  models.User
	bob    models.User
}

func newCartFixture(t *testing.T, policy StockPolicy) *cartFixture {
	t.Helper()

	gdb := storetest.Open(t)
	reg := prometheus.NewRegistry()
	rec := &events.Recorder{}
	return &cartFixture{
		svc: &CartService{
			Repo:    repo.New(gdb),
			Policy:  policy,
			Events:  rec,
			Metrics: NewCartMetrics(reg),
		},
		db:     gdb,
		events: rec,
		reg:    reg,
		alice:  storetest.SeedUser(t, gdb, "alice@example.com", false),
		bob:    storetest.SeedUser(t, gdb, "bob@example.com", false),
	}
}

func (f *cartFixture) counter(t *testing.T, op, result string) float64 {
	t.Helper()

	families, err := f.reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != "cart_operations_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["op"] == op && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestCartService_AddMergesIntoOneLine(t *testing.T) {
	f := newCartFixture(t, PolicyLine)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.db, "tee", "tops", 15, 10)

	first, err := f.svc.AddToCart(ctx, f.alice.ID, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)

	second, err := f.svc.AddToCart(ctx, f.alice.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	lines, err := f.svc.ViewCart(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "tee", lines[0].Name)
	assert.Equal(t, 15.0, lines[0].Price)

	assert.Equal(t, 2.0, f.counter(t, "add", "ok"))
	assert.Len(t, f.events.Events(events.TopicCart), 2)
}

func TestCartService_AddRejectsOverCommitOfSameLine(t *testing.T) {
	f := newCartFixture(t, PolicyLine)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.db, "boots", "shoes", 90, 5)

	line, err := f.svc.AddToCart(ctx, f.alice.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	_, err = f.svc.AddToCart(ctx, f.alice.ID, p.ID, 3)
	require.ErrorIs(t, err, ErrInsufficientStock)
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)

	lines, err := f.svc.ViewCart(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)

	line, err = f.svc.AddToCart(ctx, f.alice.ID, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	assert.Equal(t, 1.0, f.counter(t, "add", "insufficient_stock"))
}

func TestCartService_AddEdgeCases(t *testing.T) {
	f := newCartFixture(t, PolicyLine)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.db, "belt", "accessories", 20, 2)
	empty := storetest.SeedProduct(t, f.db, "sold out", "accessories", 20, 0)

	_, err := f.svc.AddToCart(ctx, f.alice.ID, p.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.AddToCart(ctx, f.alice.ID, p.ID, -1)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.AddToCart(ctx, f.alice.ID, 0, 1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.AddToCart(ctx, f.alice.ID, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.AddToCart(ctx, f.alice.ID, empty.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	line, err := f.svc.AddToCart(ctx, f.alice.ID, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	// Under the line policy other carts do not reserve stock.
	line, err = f.svc.AddToCart(ctx, f.bob.ID, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	lines, err := f.svc.ViewCart(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCartService_ViewCart(t *testing.T) {
	f := newCartFixture(t, PolicyLine)
	ctx := context.Background()
	hat := storetest.SeedProduct(t, f.db, "hat", "hats", 20, 5)
	gloves := storetest.SeedProduct(t, f.db, "gloves", "accessories", 12, 5)

	lines, err := f.svc.ViewCart(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)

	_, err = f.svc.AddToCart(ctx, f.alice.ID, gloves.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.alice.ID, hat.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.bob.ID, hat.ID, 1)
	require.NoError(t, err)

	lines, err = f.svc.ViewCart(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, gloves.ID, lines[0].ProductID)
	assert.Equal(t, hat.ID, lines[1].ProductID)
	assert.Less(t, lines[0].ID, lines[1].ID)
	assert.Equal(t, hat.ImageURL, lines[1].ImageURL)
	assert.Equal(t, "hats", lines[1].Category)
}

func TestCartService_SetQuantity(t *testing.T) {
	f := newCartFixture(t, PolicyLine)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.db, "scarf", "accessories", 18, 4)

	line, err := f.svc.AddToCart(ctx, f.alice.ID, p.ID, 1)
	require.NoError(t, err)

	updated, err := f.svc.SetQuantity(ctx, f.alice.ID, line.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = f.svc.SetQuantity(ctx, f.alice.ID, line.ID, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = f.svc.SetQuantity(ctx, f.alice.ID, line.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.SetQuantity(ctx, f.bob.ID, line.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.SetQuantity(ctx, f.alice.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	lines, err := f.svc.ViewCart(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)

	updated, err = f.svc.SetQuantity(ctx, f.alice.ID, line.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Quantity)
}

func TestCartService_RemoveFromCart(t *testing.T) {
	f := newCartFixture(t, PolicyLine)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.db, "socks", "accessories", 5, 10)

	line, err := f.svc.AddToCart(ctx, f.alice.ID, p.ID, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.RemoveFromCart(ctx, f.bob.ID, line.ID), ErrNotFound)
	require.NoError(t, f.svc.RemoveFromCart(ctx, f.alice.ID, line.ID))
	assert.ErrorIs(t, f.svc.RemoveFromCart(ctx, f.alice.ID, line.ID), ErrNotFound)

	lines, err := f.svc.ViewCart(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	var types []string
	for _, e := range f.events.Events(events.TopicCart) {
		types = append(types, e.Event.(map[string]any)["type"].(string))
	}
	assert.Equal(t, []string{"cart_item_added", "cart_item_removed"}, types)
}

func TestCartService_ReservedPolicyCountsOtherCarts(t *testing.T) {
	f := newCartFixture(t, PolicyReserved)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.db, "jacket", "outerwear", 150, 5)

	_, err := f.svc.AddToCart(ctx, f.alice.ID, p.ID, 3)
	require.NoError(t, err)

	_, err = f.svc.AddToCart(ctx, f.bob.ID, p.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	bobLine, err := f.svc.AddToCart(ctx, f.bob.ID, p.ID, 2)
	require.NoError(t, err)

	_, err = f.svc.SetQuantity(ctx, f.bob.ID, bobLine.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	aliceLines, err := f.svc.ViewCart(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceLines, 1)
	require.NoError(t, f.svc.RemoveFromCart(ctx, f.alice.ID, aliceLines[0].ID))

	_, err = f.svc.SetQuantity(ctx, f.bob.ID, bobLine.ID, 5)
	require.NoError(t, err)
}

func TestCartService_ConcurrentAddsNeverOverCommit(t *testing.T) {
	const (
		stock   = 7
		workers = 20
	)

	f := newCartFixture(t, PolicyReserved)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.db, "limited", "drops", 300, stock)

	users := make([]models.User, workers)
	for i := range users {
		users[i] = storetest.SeedUser(t, f.db, "buyer"+string(rune('a'+i))+"@example.com", false)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for _, u := range users {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := f.svc.AddToCart(ctx, userID, p.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, workers-stock, rejected)

	var carted int64
	require.NoError(t, f.db.Model(&models.CartItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("product_id = ?", p.ID).
		Scan(&carted).Error)
	assert.EqualValues(t, stock, carted)
}
