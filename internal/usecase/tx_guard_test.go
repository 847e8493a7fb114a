package usecase_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"stockscan/internal/usecase"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestTxGuard_MutualExclusion(t *testing.T) {
	g := usecase.NewTxGuard()

	assert.NoError(t, g.Acquire("A"))
	assert.ErrorIs(t, g.Acquire("B"), usecase.ErrBusy)
	assert.NoError(t, g.Acquire("A"), "same code re-enters")

	code, held := g.Holder()
	assert.True(t, held)
	assert.Equal(t, "A", code)

	g.Release()
	_, held = g.Holder()
	assert.False(t, held)
	assert.NoError(t, g.Acquire("B"))
}

func TestTxGuard_ReleaseWhenIdle(t *testing.T) {
	g := usecase.NewTxGuard()
	g.Release()

	_, held := g.Holder()
	assert.False(t, held)
}

func TestTxGuard_ConcurrentAcquire(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := usecase.NewTxGuard()
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, code := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			<-start
			if g.Acquire(code) == nil {
				wins.Add(1)
			}
		}(code)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
