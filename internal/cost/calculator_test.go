package cost

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comfyrun/comfyrun/internal/gpu"
)

func testCatalog() *gpu.Catalog {
	return gpu.NewCatalog([]gpu.Spec{
		{ID: "gpu-x", DisplayName: "X", VRAMGB: 24, Tier: "consumer", CostPerHour: 2.00},
		{ID: "gpu-y", DisplayName: "Y", VRAMGB: 48, Tier: "professional", CostPerHour: 0.50},
	})
}

func TestHourlyRate(t *testing.T) {
	c := NewCalculator(testCatalog())

	assert.Equal(t, 2.00, c.HourlyRate("gpu-x", true))
	assert.Equal(t, 4.00, c.HourlyRate("gpu-x", false))
	assert.Zero(t, c.HourlyRate("unknown", true))
}

func TestAccumulatedCost(t *testing.T) {
	now := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		rate  float64
		want  float64
	}{
		{"one hour at $2", now.Add(-time.Hour), 2.00, 2.00},
		{"thirty minutes at $2", now.Add(-30 * time.Minute), 2.00, 1.00},
		{"zero elapsed", now, 2.00, 0},
		{"future start clamps to zero", now.Add(time.Hour), 2.00, 0},
		{"unpriced rate", now.Add(-time.Hour), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AccumulatedCost(now, tt.start, tt.rate)
			assert.InDelta(t, tt.want, got, 0.001)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestAccumulatedCostNotPrematurelyRounded(t *testing.T) {
	// Accumulation stays raw; rounding is applied once at the display
	// boundary. Ten seconds at $0.333/hr is well under a hundredth of a
	// cent and must survive intact.
	now := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	got := AccumulatedCost(now, now.Add(-10*time.Second), 0.333)
	assert.InDelta(t, 10.0/3600.0*0.333, got, 1e-12)
}

func TestAccumulated_OneHourScenario(t *testing.T) {
	// A pod on a $2.00/hr interruptible GPU that has run for 3600 seconds
	// costs $2.00 within rounding.
	c := NewCalculator(testCatalog())
	now := time.Now().UTC()
	start := now.Add(-3600 * time.Second)

	got := AccumulatedCost(now, start, c.HourlyRate("gpu-x", true))
	assert.InDelta(t, 2.00, got, 0.01)
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		hours float64
		rate  float64
		want  float64
	}{
		{1, 2.00, 2.00},
		{24, 0.50, 12.00},
		{0.5, 0.333, 0.17},
		{0, 5, 0},
	}

	for _, tt := range tests {
		got := Estimate(tt.hours, tt.rate)
		assert.Equal(t, tt.want, got)
		assert.GreaterOrEqual(t, got, 0.0)
	}
}

func TestBreakdownAt(t *testing.T) {
	c := NewCalculator(testCatalog())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(-90 * time.Minute)

	b := c.BreakdownAt(now, "gpu-x", start, true)
	assert.Equal(t, 2.00, b.HourlyRate)
	assert.Equal(t, 1.5, b.ElapsedHours)
	assert.Equal(t, 3.00, b.TotalCost)
	assert.True(t, b.Interruptible)
	assert.Equal(t, "Community Cloud", b.CloudType)
	assert.Equal(t, 48.00, b.Projections.Hours24)
	assert.Equal(t, 336.00, b.Projections.Days7)
	assert.Equal(t, 1440.00, b.Projections.Days30)
}

func TestBreakdownAt_SecureCloud(t *testing.T) {
	c := NewCalculator(testCatalog())
	now := time.Now().UTC()

	b := c.BreakdownAt(now, "gpu-x", now, false)
	assert.Equal(t, 4.00, b.HourlyRate)
	assert.Equal(t, "Secure Cloud", b.CloudType)
	assert.Equal(t, 96.00, b.Projections.Hours24)
}

func TestAggregateAt(t *testing.T) {
	c := NewCalculator(testCatalog())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	items := []Item{
		// Live: 2 hours on gpu-x at $2/hr = $4.00.
		{GPUID: "gpu-x", Start: now.Add(-2 * time.Hour), Interruptible: true, Active: true},
		// Live: 1 hour on gpu-y at $0.50/hr = $0.50.
		{GPUID: "gpu-y", Start: now.Add(-time.Hour), Interruptible: true, Active: true},
		// Inactive: snapshot only, start time ignored.
		{GPUID: "gpu-x", Start: now.Add(-100 * time.Hour), Active: false, Snapshot: 1.25},
	}

	s := c.AggregateAt(now, items)
	require.Equal(t, 3, s.TotalPods)
	assert.InDelta(t, 5.75, s.TotalCost, 0.001)

	require.Len(t, s.ByGPU, 2)
	assert.Equal(t, 2, s.ByGPU["gpu-x"].Count)
	assert.InDelta(t, 5.25, s.ByGPU["gpu-x"].Cost, 0.001)
	assert.Equal(t, 1, s.ByGPU["gpu-y"].Count)
	assert.InDelta(t, 0.50, s.ByGPU["gpu-y"].Cost, 0.001)
}

func TestAggregateAt_Empty(t *testing.T) {
	c := NewCalculator(testCatalog())
	s := c.AggregateAt(time.Now().UTC(), nil)
	assert.Zero(t, s.TotalCost)
	assert.Zero(t, s.TotalPods)
	assert.Empty(t, s.ByGPU)
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$2.00", FormatUSD(2))
	assert.Equal(t, "$0.13", FormatUSD(0.134))
	assert.Equal(t, "$0.50/hr", FormatRate(0.5))
}
