package upstream

import (
	"context"
	"sync"
	"time"

	"admetric.ai/ads-api-gateway/config/environment_variables"
)

// Reservoir bounds outbound traffic toward the advertising platform with a
// refillable unit budget, a concurrency ceiling and a minimum spacing between
// dispatches. It protects the shared upstream relationship, not any single
// caller, so there is one reservoir per process.
type Reservoir struct {
	mu           sync.Mutex
	units        int
	capacity     int
	lastDispatch time.Time
	minSpacing   time.Duration

	sem chan struct{}

	now func() time.Time // injectable clock for testing
}

// NewReservoir builds the process reservoir from environment configuration.
func NewReservoir() *Reservoir {
	env := environment_variables.EnvironmentVariables
	capacity := env.RESERVOIR_CAPACITY
	if capacity <= 0 {
		capacity = 200
	}
	concurrency := env.RESERVOIR_MAX_CONCURRENCY
	if concurrency <= 0 {
		concurrency = 5
	}
	spacing := time.Duration(env.RESERVOIR_MIN_SPACING_MS) * time.Millisecond
	if spacing <= 0 {
		spacing = 100 * time.Millisecond
	}
	return newReservoir(capacity, concurrency, spacing)
}

func newReservoir(capacity, concurrency int, minSpacing time.Duration) *Reservoir {
	return &Reservoir{
		units:      capacity,
		capacity:   capacity,
		minSpacing: minSpacing,
		sem:        make(chan struct{}, concurrency),
		now:        time.Now,
	}
}

// Acquire consumes one unit and a concurrency slot, waiting out the minimum
// spacing since the previous dispatch. It blocks while the concurrency
// ceiling is reached and fails fast when the budget is exhausted. Every
// successful Acquire must be paired with Release.
func (r *Reservoir) Acquire(ctx context.Context) error {
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.mu.Lock()
	if r.units <= 0 {
		r.mu.Unlock()
		<-r.sem
		return ErrReservoirExhausted
	}
	r.units--

	var wait time.Duration
	now := r.now()
	earliest := r.lastDispatch.Add(r.minSpacing)
	if now.Before(earliest) {
		wait = earliest.Sub(now)
		r.lastDispatch = earliest
	} else {
		r.lastDispatch = now
	}
	r.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			r.Release()
			return ctx.Err()
		}
	}
	return nil
}

// Release frees the concurrency slot taken by Acquire.
func (r *Reservoir) Release() {
	<-r.sem
}

// Refill restores the budget to full capacity. Called on a fixed schedule.
func (r *Reservoir) Refill() {
	r.mu.Lock()
	r.units = r.capacity
	r.mu.Unlock()
}

// Level returns the remaining unit count.
func (r *Reservoir) Level() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.units
}
