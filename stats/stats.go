package stats

import (
	"math"
	"math/rand/v2"
	"slices"
)

const (
	// DefaultSampleSize is the reservoir capacity used by NewAccumulator.
	DefaultSampleSize = 50_000
	// DefaultSeed seeds the reservoir generator.
	DefaultSeed = 1337
)

// Percentiles holds approximate quantiles of the observed values.
type Percentiles struct {
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// Summary is the result of an Accumulator.
type Summary struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdPop float64 `json:"std_pop"`
	// Percentiles are estimated from a sample of SampleSize values.
	Percentiles Percentiles `json:"approx_percentiles"`
	SampleSize  int         `json:"sample_size"`
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithSampleSize sets the reservoir capacity. Values below 1 are ignored.
func WithSampleSize(n int) Option {
	return func(a *Accumulator) {
		if n > 0 {
			a.capacity = n
		}
	}
}

// WithSeed sets the reservoir seed.
func WithSeed(seed uint64) Option {
	return func(a *Accumulator) {
		a.seed = seed
	}
}

// Accumulator folds a stream of values. The zero value is not usable; call
// NewAccumulator.
type Accumulator struct {
	n        int
	sum      float64
	min, max float64
	mean, m2 float64

	capacity int
	seed     uint64
	rng      *rand.Rand
	sample   []float64
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator(opts ...Option) *Accumulator {
	a := &Accumulator{
		capacity: DefaultSampleSize,
		seed:     DefaultSeed,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.rng = rand.New(rand.NewPCG(a.seed, a.seed))
	return a
}

// Add observes x. NaN values are ignored.
func (a *Accumulator) Add(x float64) {
	if math.IsNaN(x) {
		return
	}
	a.n++
	a.sum += x
	if a.n == 1 {
		a.min, a.max = x, x
	} else {
		a.min = min(a.min, x)
		a.max = max(a.max, x)
	}

	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)

	if len(a.sample) < a.capacity {
		a.sample = append(a.sample, x)
		return
	}
	// Algorithm R: keep x with probability capacity/n.
	if j := a.rng.IntN(a.n); j < a.capacity {
		a.sample[j] = x
	}
}

// Count returns the number of observed values.
func (a *Accumulator) Count() int {
	return a.n
}

// Summary returns the statistics so far. An empty accumulator yields a zero
// Summary.
func (a *Accumulator) Summary() Summary {
	if a.n == 0 {
		return Summary{}
	}
	sorted := slices.Clone(a.sample)
	slices.Sort(sorted)
	return Summary{
		Count:  a.n,
		Sum:    a.sum,
		Min:    a.min,
		Max:    a.max,
		Mean:   a.mean,
		StdPop: math.Sqrt(a.m2 / float64(a.n)),
		Percentiles: Percentiles{
			P50: Quantile(sorted, 0.50),
			P90: Quantile(sorted, 0.90),
			P95: Quantile(sorted, 0.95),
			P99: Quantile(sorted, 0.99),
		},
		SampleSize: len(sorted),
	}
}

// Quantile returns the nearest-rank element of sorted at fraction p, rounding
// the rank half to even. An empty slice yields 0.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.RoundToEven(float64(len(sorted)-1) * p))
	idx = max(0, min(len(sorted)-1, idx))
	return sorted[idx]
}
