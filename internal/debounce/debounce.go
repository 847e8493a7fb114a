// Package debounce drops repeated scan events for the same code inside a
// short window. It is advisory: the transaction guard is what prevents two
// decisions from interleaving.
package debounce

import (
	"context"
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const DefaultWindow = 3 * time.Second

type Debouncer struct {
	limiter *limiter.Limiter
}

func New(window time.Duration) (*Debouncer, error) {
	if window <= 0 {
		return nil, fmt.Errorf("debounce window must be positive, got %s", window)
	}

	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "scan",
		CleanUpInterval: 4 * window,
	})
	rate := limiter.Rate{Period: window, Limit: 1}
	return &Debouncer{limiter: limiter.New(store, rate)}, nil
}

// Allow reports whether code may start a new scan event now.
func (d *Debouncer) Allow(ctx context.Context, code string) (bool, error) {
	lctx, err := d.limiter.Get(ctx, code)
	if err != nil {
		return false, err
	}
	return !lctx.Reached, nil
}
