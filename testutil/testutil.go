package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/ledgerdb/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed)) //nolint:gosec // deterministic test data
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63n returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// ExpFloat64 returns an exponentially distributed number with rate 1.
func (r *RNG) ExpFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.ExpFloat64()
}

// DefaultTokens are the symbols used by the generator when none are configured.
var DefaultTokens = []string{"BTC", "ETH", "SOL", "ADA", "XRP", "DOGE", "DOT", "AVAX"}

// DefaultStatuses are the transaction statuses used by the generator.
var DefaultStatuses = []string{"completed", "pending", "failed"}

// GeneratorConfig configures synthetic record generation.
type GeneratorConfig struct {
	// Wallets is the number of distinct wallets (W0001...). Defaults to 100.
	Wallets int
	// Tokens defaults to DefaultTokens.
	Tokens []string
	// Statuses defaults to DefaultStatuses.
	Statuses []string
	// Start is the first timestamp in epoch seconds. Defaults to 2024-01-01.
	Start int64
	// MaxStep is the largest gap between consecutive timestamps. Defaults to 60.
	// A zero gap produces duplicate timestamps.
	MaxStep int64
}

// Generator produces synthetic transaction records.
type Generator struct {
	rng  *RNG
	cfg  GeneratorConfig
	next int64
}

// NewGenerator creates a generator drawing from rng.
func NewGenerator(rng *RNG, cfg GeneratorConfig) *Generator {
	if cfg.Wallets <= 1 {
		cfg.Wallets = 100
	}
	if len(cfg.Tokens) == 0 {
		cfg.Tokens = DefaultTokens
	}
	if len(cfg.Statuses) == 0 {
		cfg.Statuses = DefaultStatuses
	}
	if cfg.Start == 0 {
		cfg.Start = 1704067200
	}
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = 60
	}
	return &Generator{rng: rng, cfg: cfg, next: cfg.Start}
}

// Wallet returns the name of the i-th wallet.
func Wallet(i int) string {
	return fmt.Sprintf("W%04d", i+1)
}

// Next returns the next record. Timestamps are non-decreasing.
func (g *Generator) Next() model.Fields {
	from := g.rng.Intn(g.cfg.Wallets)
	to := g.rng.Intn(g.cfg.Wallets - 1)
	if to >= from {
		to++
	}
	ts := g.next
	g.next += g.rng.Int63n(g.cfg.MaxStep + 1)

	price := float64(int(g.rng.ExpFloat64()*100000)) / 100
	return model.Fields{
		Timestamp:  ts,
		Token:      g.cfg.Tokens[g.rng.Intn(len(g.cfg.Tokens))],
		Price:      price,
		Volume:     float64(int(price*g.rng.Float64())) / 100,
		WalletFrom: Wallet(from),
		WalletTo:   Wallet(to),
		Status:     g.cfg.Statuses[g.rng.Intn(len(g.cfg.Statuses))],
	}
}

// Batch returns n records.
func (g *Generator) Batch(n int) []model.Fields {
	out := make([]model.Fields, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}
