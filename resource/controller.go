package resource

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrBusy is returned when every in-flight slot is taken.
	ErrBusy = errors.New("resource: too many requests in flight")
	// ErrRateLimited is returned when the request rate is exhausted.
	ErrRateLimited = errors.New("resource: rate limit exceeded")
)

// Config holds resource limits. Zero values disable the matching limit.
type Config struct {
	// MaxInFlight is the number of requests admitted at once.
	MaxInFlight int64

	// RequestsPerSecond and Burst bound the admission rate.
	RequestsPerSecond float64
	Burst             int

	// IOBytesPerSec bounds dataset read throughput.
	IOBytesPerSec int64
}

// Controller admits requests and throttles dataset IO. A nil *Controller
// admits everything.
type Controller struct {
	cfg Config

	inflight  *semaphore.Weighted // nil if unbounded
	limiter   *rate.Limiter       // nil if unlimited
	ioLimiter *rate.Limiter       // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxInFlight > 0 {
		c.inflight = semaphore.NewWeighted(cfg.MaxInFlight)
	}

	if cfg.RequestsPerSecond > 0 {
		burst := max(cfg.Burst, 1)
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if cfg.IOBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOBytesPerSec), int(cfg.IOBytesPerSec))
	}

	return c
}

// TryAdmit admits one request without blocking. On success the returned
// release func must be called once the request is done.
func (c *Controller) TryAdmit() (release func(), err error) {
	if c == nil {
		return func() {}, nil
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, ErrRateLimited
	}
	if c.inflight == nil {
		return func() {}, nil
	}
	if !c.inflight.TryAcquire(1) {
		return nil, ErrBusy
	}
	return func() { c.inflight.Release(1) }, nil
}

// Admit is like TryAdmit but waits for the rate limiter and a free slot
// until ctx is done.
func (c *Controller) Admit(ctx context.Context) (release func(), err error) {
	if c == nil {
		return func() {}, nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.inflight == nil {
		return func() {}, nil
	}
	if err := c.inflight.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { c.inflight.Release(1) }, nil
}

// AcquireIO waits until the IO limit allows n bytes.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil || n <= 0 {
		return nil
	}
	// WaitN rejects requests above the burst; split them.
	burst := c.ioLimiter.Burst()
	for n > 0 {
		step := min(n, burst)
		if err := c.ioLimiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
