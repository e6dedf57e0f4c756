// Package cost provides cost calculation for provisioned GPU pods.
package cost

import (
	"math"
	"time"

	"github.com/comfyrun/comfyrun/internal/gpu"
)

// Calculator computes pod costs from the GPU catalog rates.
// All methods are pure given a clock value; the convenience variants that
// omit an explicit time use a single time.Now() sample per call.
type Calculator struct {
	catalog *gpu.Catalog
}

// Breakdown is a detailed cost report for a single pod.
type Breakdown struct {
	HourlyRate    float64     `json:"hourly_rate"`
	ElapsedHours  float64     `json:"elapsed_hours"`
	TotalCost     float64     `json:"total_cost"`
	Interruptible bool        `json:"interruptible"`
	CloudType     string      `json:"cloud_type"`
	Projections   Projections `json:"projections"`
}

// Projections are fixed-horizon cost projections computed from the rate alone.
type Projections struct {
	Hours24 float64 `json:"24_hours"`
	Days7   float64 `json:"7_days"`
	Days30  float64 `json:"30_days"`
}

// Item is the per-pod input to Aggregate. Active pods (running or
// initializing) contribute a freshly computed live cost; inactive pods
// contribute their recorded Snapshot.
type Item struct {
	GPUID         string
	Start         time.Time
	Interruptible bool
	Active        bool
	Snapshot      float64
}

// Summary aggregates costs across a pod collection.
type Summary struct {
	TotalCost float64             `json:"total_cost"`
	TotalPods int                 `json:"total_pods"`
	ByGPU     map[string]GroupCost `json:"by_gpu"`
}

// GroupCost is the per-GPU-type slice of a Summary.
type GroupCost struct {
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
}

// NewCalculator creates a calculator backed by the given catalog.
func NewCalculator(catalog *gpu.Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// HourlyRate returns the hourly rate for a GPU under the given billing mode.
// Unknown GPUs are unpriced and yield 0.
func (c *Calculator) HourlyRate(gpuID string, interruptible bool) float64 {
	return c.catalog.Cost(gpuID, interruptible)
}

// AccumulatedCost computes elapsed-hours x rate between start and now.
// Negative elapsed time (clock skew, future start timestamps) clamps to 0.
// The result is unrounded; display rounding happens at the boundary so
// repeated accumulation never compounds rounding error.
func AccumulatedCost(now, start time.Time, rate float64) float64 {
	elapsed := now.Sub(start).Hours()
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed * rate
}

// Accumulated computes the live accumulated cost for a pod started at start.
func (c *Calculator) Accumulated(gpuID string, start time.Time, interruptible bool) float64 {
	return AccumulatedCost(time.Now().UTC(), start, c.HourlyRate(gpuID, interruptible))
}

// Estimate returns the projected cost of running at rate for hours.
func Estimate(hours, rate float64) float64 {
	return round(hours*rate, 2)
}

// EstimateGPU returns the projected cost of running a GPU for hours under
// the given billing mode.
func (c *Calculator) EstimateGPU(gpuID string, hours float64, interruptible bool) float64 {
	return Estimate(hours, c.HourlyRate(gpuID, interruptible))
}

// BreakdownAt builds a detailed cost breakdown using the supplied clock value.
func (c *Calculator) BreakdownAt(now time.Time, gpuID string, start time.Time, interruptible bool) Breakdown {
	rate := c.HourlyRate(gpuID, interruptible)
	elapsed := now.Sub(start).Hours()
	if elapsed < 0 {
		elapsed = 0
	}

	cloudType := "Community Cloud"
	if !interruptible {
		cloudType = "Secure Cloud"
	}

	return Breakdown{
		HourlyRate:    round(rate, 4),
		ElapsedHours:  round(elapsed, 2),
		TotalCost:     round(elapsed*rate, 2),
		Interruptible: interruptible,
		CloudType:     cloudType,
		Projections: Projections{
			Hours24: round(rate*24, 2),
			Days7:   round(rate*24*7, 2),
			Days30:  round(rate*24*30, 2),
		},
	}
}

// Breakdown builds a detailed cost breakdown as of now.
func (c *Calculator) Breakdown(gpuID string, start time.Time, interruptible bool) Breakdown {
	return c.BreakdownAt(time.Now().UTC(), gpuID, start, interruptible)
}

// AggregateAt sums costs across pods using the supplied clock value.
func (c *Calculator) AggregateAt(now time.Time, items []Item) Summary {
	summary := Summary{
		TotalPods: len(items),
		ByGPU:     make(map[string]GroupCost),
	}

	var total float64
	for _, it := range items {
		var cost float64
		if it.Active {
			cost = AccumulatedCost(now, it.Start, c.HourlyRate(it.GPUID, it.Interruptible))
		} else {
			cost = it.Snapshot
		}
		total += cost

		g := summary.ByGPU[it.GPUID]
		g.Count++
		g.Cost += cost
		summary.ByGPU[it.GPUID] = g
	}

	// Rounding is applied once, at the boundary, so repeated aggregation
	// never compounds rounding error.
	for id, g := range summary.ByGPU {
		g.Cost = round(g.Cost, 2)
		summary.ByGPU[id] = g
	}
	summary.TotalCost = round(total, 2)

	return summary
}

// Aggregate sums costs across pods as of now.
func (c *Calculator) Aggregate(items []Item) Summary {
	return c.AggregateAt(time.Now().UTC(), items)
}

func round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
