package pricing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PricePulse/internal/domain/models"
)

type mapStore struct {
	states map[string]models.EntityState
	puts   int
}

func newMapStore() *mapStore {
	return &mapStore{states: make(map[string]models.EntityState)}
}

func (m *mapStore) Get(_ context.Context, platform, id string) (*models.EntityState, bool, error) {
	st, ok := m.states[platform+":"+id]
	if !ok {
		return nil, false, nil
	}
	cp := st
	return &cp, true, nil
}

func (m *mapStore) Put(_ context.Context, platform, id string, state *models.EntityState) error {
	m.states[platform+":"+id] = *state
	m.puts++
	return nil
}

func fixedClock(tick int64) *Clock {
	quantum := 3 * time.Second
	at := time.Unix(tick*3, 0)
	return NewClock(quantum).WithNow(func() time.Time { return at })
}

func testProducts(n int) []models.ProductSnapshot {
	products := make([]models.ProductSnapshot, n)
	for i := range products {
		products[i] = models.ProductSnapshot{
			ID:       string(rune('a' + i)),
			Platform: "shopee",
			Name:     "product",
			Price:    100,
		}
	}
	return products
}

func newTestSimulator(tick int64, store *mapStore, src DrawSource) *Simulator {
	cfg := testPricingConfig()
	engine := NewEngine(cfg)
	return NewSimulator(cfg, fixedClock(tick), store, engine, WithDrawSource(src))
}

func TestTickDeterministicWithFixedSeed(t *testing.T) {
	products := testProducts(20)

	a := newTestSimulator(1000, newMapStore(), NewSeededSource(42)).
		Tick(context.Background(), products)
	b := newTestSimulator(1000, newMapStore(), NewSeededSource(42)).
		Tick(context.Background(), products)

	require.Equal(t, len(a.Updated), len(b.Updated))
	for i := range a.Updated {
		assert.Equal(t, a.Updated[i].ID, b.Updated[i].ID)
		assert.True(t, a.Updated[i].Price.Equal(b.Updated[i].Price))
		assert.True(t, a.Updated[i].Pricing.DemandFactor.Equal(b.Updated[i].Pricing.DemandFactor))
		assert.True(t, a.Updated[i].Pricing.CompetitorAvg.Equal(b.Updated[i].Pricing.CompetitorAvg))
	}
}

func TestTickDeterministicSelectionFormula(t *testing.T) {
	products := testProducts(20)
	tick := int64(1000)

	snap := newTestSimulator(tick, newMapStore(), NewSeededSource(42)).
		Tick(context.Background(), products)

	require.NotEmpty(t, snap.Updated)
	for i, up := range snap.Updated {
		want := products[(tick*7+int64(i)*13)%int64(len(products))]
		assert.Equal(t, want.ID, up.ID)
	}
}

func TestTickRespectsFloor(t *testing.T) {
	original := 120.0
	products := []models.ProductSnapshot{{
		ID:            "p1",
		Platform:      "shopee",
		Price:         100,
		OriginalPrice: &original,
	}}

	// floor = 120*0.6*1.3 = 93.6
	store := newMapStore()
	for tick := int64(500); tick < 520; tick++ {
		snap := newTestSimulator(tick, store, NewSeededSource(42)).Tick(context.Background(), products)
		require.Len(t, snap.Updated, 1)
		price, _ := snap.Updated[0].Price.Float64()
		assert.GreaterOrEqual(t, price, 93.6-1e-9)
	}
}

func TestTickPriceStepBounded(t *testing.T) {
	products := testProducts(1)

	snap := newTestSimulator(1000, newMapStore(), NewSeededSource(42)).
		Tick(context.Background(), products)

	require.Len(t, snap.Updated, 1)
	// EMA over a walk bounded to ±1.5% cannot leave [98.5, 101.5] in one tick
	price, _ := snap.Updated[0].Price.Float64()
	assert.GreaterOrEqual(t, price, 100*0.985-1e-9)
	assert.LessOrEqual(t, price, 100*1.015+1e-9)
}

func TestTickSubsetSize(t *testing.T) {
	products := testProducts(20)

	snap := newTestSimulator(1000, newMapStore(), NewSystemSource()).
		Tick(context.Background(), products)

	// 5-15% of 20, minimum 1
	assert.GreaterOrEqual(t, len(snap.Updated), 1)
	assert.LessOrEqual(t, len(snap.Updated), 3)
}

func TestTickEmptyInput(t *testing.T) {
	snap := newTestSimulator(1000, newMapStore(), NewSystemSource()).
		Tick(context.Background(), nil)

	assert.Empty(t, snap.Updated)
	assert.Equal(t, int64(1000), snap.Tick)
}

func TestTickLastTickMonotonic(t *testing.T) {
	products := testProducts(1)
	store := newMapStore()

	newTestSimulator(1000, store, NewSeededSource(42)).Tick(context.Background(), products)
	st, ok, err := store.Get(context.Background(), "shopee", "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1000), st.LastTick)

	// a later tick advances, an equal tick never regresses
	newTestSimulator(1001, store, NewSeededSource(42)).Tick(context.Background(), products)
	st, _, _ = store.Get(context.Background(), "shopee", "a")
	assert.Equal(t, int64(1001), st.LastTick)

	newTestSimulator(1001, store, NewSeededSource(42)).Tick(context.Background(), products)
	st, _, _ = store.Get(context.Background(), "shopee", "a")
	assert.Equal(t, int64(1001), st.LastTick)
}

func TestTickSeedsMissingFields(t *testing.T) {
	products := []models.ProductSnapshot{{ID: "p1", Platform: "lazada", Price: 100}}
	store := newMapStore()

	newTestSimulator(1000, store, NewSeededSource(42)).Tick(context.Background(), products)

	st, ok, err := store.Get(context.Background(), "lazada", "p1")
	require.NoError(t, err)
	require.True(t, ok)
	// competitor seeded near price*1.05, demand near the 0.5 midpoint
	assert.InDelta(t, 105, st.CompetitorAvg, 105*0.02+1e-9)
	assert.InDelta(t, 0.5, st.DemandFactor, 0.05+1e-9)
}

func TestTickZeroPriceHitsFloor(t *testing.T) {
	original := 120.0
	products := []models.ProductSnapshot{{
		ID:            "p1",
		Platform:      "shopee",
		Price:         0,
		OriginalPrice: &original,
	}}

	snap := newTestSimulator(1000, newMapStore(), NewSeededSource(42)).
		Tick(context.Background(), products)

	require.Len(t, snap.Updated, 1)
	price, _ := snap.Updated[0].Price.Float64()
	assert.InDelta(t, 93.6, price, 1e-9)
	assert.True(t, snap.Updated[0].Pricing.ClampApplied)

	// The walk starts with no competitor signal, so the ceiling is
	// unbounded and must stay off the wire rather than break encoding.
	assert.Nil(t, snap.Updated[0].Pricing.Ceiling)
	_, err := json.Marshal(snap)
	require.NoError(t, err)
}
