package usecase

import (
	"errors"
	"sync"
)

var ErrBusy = errors.New("another barcode is being processed")

// TxGuard allows one pending decision at a time, keyed by barcode.
// Re-acquiring the code that already holds it succeeds, so a form that is
// re-submitted for the same barcode is not treated as contention.
type TxGuard struct {
	mu   sync.Mutex
	held bool
	code string
}

func NewTxGuard() *TxGuard {
	return &TxGuard{}
}

// Acquire moves IDLE -> HELD(code). It fails with ErrBusy when another code holds it.
func (g *TxGuard) Acquire(code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held && g.code != code {
		return ErrBusy
	}
	g.held = true
	g.code = code
	return nil
}

// Release always returns to IDLE.
func (g *TxGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.held = false
	g.code = ""
}

// Holder returns the code currently holding the guard.
func (g *TxGuard) Holder() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.code, g.held
}
