package pricing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepStaysWithinBounds(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		got := Step(r, 100, 0.002, 0.015)
		assert.GreaterOrEqual(t, got, 100*(1-0.015))
		assert.LessOrEqual(t, got, 100*(1+0.015))
		assert.GreaterOrEqual(t, math.Abs(got-100), 100*0.002-1e-9)
	}
}

func TestStepPanicsOnInvertedBounds(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	require.Panics(t, func() { Step(r, 100, 0.05, 0.01) })
}

func TestStepClampedStaysInDomain(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	v := 0.5
	for i := 0; i < 1000; i++ {
		v = StepClamped(r, v, 0.05, 0.1, 0.95)
		assert.GreaterOrEqual(t, v, 0.1)
		assert.LessOrEqual(t, v, 0.95)
	}
}

func TestEMA(t *testing.T) {
	assert.InDelta(t, 103.0, EMA(100, 110, 0.3), 1e-9)
	// alpha 1 tracks the new value exactly
	assert.InDelta(t, 110.0, EMA(100, 110, 1.0), 1e-9)
}

func TestClamp(t *testing.T) {
	v, clamped := Clamp(50, 93.6, 200)
	assert.Equal(t, 93.6, v)
	assert.True(t, clamped)

	v, clamped = Clamp(250, 93.6, 200)
	assert.Equal(t, 200.0, v)
	assert.True(t, clamped)

	v, clamped = Clamp(150, 93.6, 200)
	assert.Equal(t, 150.0, v)
	assert.False(t, clamped)

	// unknown competitor: ceiling is +Inf, floor still applies
	v, clamped = Clamp(50, 93.6, math.Inf(1))
	assert.Equal(t, 93.6, v)
	assert.True(t, clamped)
}

func TestNormalizeMargin(t *testing.T) {
	assert.InDelta(t, 0.3, NormalizeMargin(0.3), 1e-9)
	assert.InDelta(t, 0.3, NormalizeMargin(30), 1e-9)
}

func TestSeededSourceReproducible(t *testing.T) {
	src := NewSeededSource(42)
	a := src.Stream(100, 3)
	b := src.Stream(100, 3)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Int63(), b.Int63())
	}

	// a different ordinal yields a different stream
	c := src.Stream(100, 4)
	d := src.Stream(100, 3)
	assert.NotEqual(t, c.Int63(), d.Int63())
}
