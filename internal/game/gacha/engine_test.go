package gacha_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/game/gacha"
	"github.com/cory-johannsen/pokegen/internal/game/inventory"
)

type seqAcquirer struct {
	next    atomic.Int64
	calls   atomic.Int32
	block   chan struct{}
	sawDone atomic.Bool
}

func (a *seqAcquirer) AcquireBatch(ctx context.Context, count int) []creature.Creature {
	a.calls.Add(1)
	if a.block != nil {
		<-a.block
	}
	if ctx.Err() != nil {
		a.sawDone.Store(true)
	}
	out := make([]creature.Creature, count)
	for i := range out {
		n := a.next.Add(1)
		out[i] = creature.Creature{
			ID:        fmt.Sprintf("c%d", n),
			SpeciesID: int(n),
			Name:      "x",
			Types:     []string{"normal"},
			Rarity:    creature.Common,
		}
	}
	return out
}

func newEngine(t *testing.T, store *inventory.Store, acq gacha.Acquirer) *gacha.Engine {
	return gacha.NewEngine(store, acq, gacha.Options{PullCost: 100}, zaptest.NewLogger(t))
}

func TestPull_Scenario(t *testing.T) {
	store := inventory.NewDefault()
	e := newEngine(t, store, &seqAcquirer{})

	first, err := e.Pull(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1900, store.Credits())
	assert.Equal(t, 1, store.Len())

	ten, err := e.Pull(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ten, 10)
	assert.Equal(t, 900, store.Credits())
	assert.Equal(t, 11, store.Len())

	coll := store.Collection()
	assert.Equal(t, ten[0].ID, coll[0].ID, "newest first")
	assert.Equal(t, first[0].ID, coll[10].ID)

	released := coll[4]
	v, err := store.Release(released.ID)
	require.NoError(t, err)
	assert.Equal(t, creature.ResellValue(released), v)
	assert.Equal(t, 900+v, store.Credits())
	assert.Equal(t, 10, store.Len())
}

func TestPull_InvalidCount(t *testing.T) {
	store := inventory.NewDefault()
	acq := &seqAcquirer{}
	e := newEngine(t, store, acq)
	for _, n := range []int{0, -3} {
		_, err := e.Pull(context.Background(), n)
		assert.ErrorIs(t, err, gacha.ErrInvalidCount)
	}
	assert.Equal(t, 2000, store.Credits())
	assert.Zero(t, acq.calls.Load())
}

func TestPull_InsufficientCredits(t *testing.T) {
	store, err := inventory.New(950, nil)
	require.NoError(t, err)
	acq := &seqAcquirer{}
	e := newEngine(t, store, acq)

	assert.False(t, e.CanAfford(10))
	assert.True(t, e.CanAfford(9))
	_, err = e.Pull(context.Background(), 10)
	assert.ErrorIs(t, err, gacha.ErrInsufficientCredits)
	assert.Equal(t, 950, store.Credits())
	assert.Zero(t, store.Len())
	assert.Zero(t, acq.calls.Load())
	assert.False(t, e.InFlight(), "rejected pull releases the flag")
}

func TestPull_AtMostOneInFlight(t *testing.T) {
	store := inventory.NewDefault()
	acq := &seqAcquirer{block: make(chan struct{})}
	e := newEngine(t, store, acq)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := e.Pull(context.Background(), 1)
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return acq.calls.Load() == 1 }, time.Second, time.Millisecond)

	assert.True(t, e.InFlight())
	assert.Equal(t, 1900, store.Credits(), "debit happens before acquisition settles")
	_, err := e.Pull(context.Background(), 1)
	assert.ErrorIs(t, err, gacha.ErrPullInFlight)
	assert.Equal(t, 1900, store.Credits())

	close(acq.block)
	wg.Wait()
	assert.False(t, e.InFlight())
	assert.Equal(t, 1, store.Len())
}

func TestPull_RunsToCompletionAfterCancel(t *testing.T) {
	store := inventory.NewDefault()
	acq := &seqAcquirer{block: make(chan struct{})}
	e := newEngine(t, store, acq)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := e.Pull(ctx, 3)
		done <- err
	}()
	require.Eventually(t, func() bool { return acq.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	close(acq.block)

	require.NoError(t, <-done)
	assert.False(t, acq.sawDone.Load(), "acquisition context is detached from cancellation")
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, 1700, store.Credits())
}

func TestPull_HonoursMinDuration(t *testing.T) {
	store := inventory.NewDefault()
	e := gacha.NewEngine(store, &seqAcquirer{}, gacha.Options{PullCost: 100, MinDuration: 30 * time.Millisecond}, zaptest.NewLogger(t))
	start := time.Now()
	_, err := e.Pull(context.Background(), 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestPull_DebitsExactCost(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		credits := rapid.IntRange(0, 5000).Draw(rt, "credits")
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		store, err := inventory.New(credits, nil)
		if err != nil {
			rt.Fatal(err)
		}
		e := newEngine(t, store, &seqAcquirer{})
		_, err = e.Pull(context.Background(), count)
		if credits >= count*100 {
			if err != nil || store.Credits() != credits-count*100 || store.Len() != count {
				rt.Fatalf("accepted pull: err=%v credits=%d len=%d", err, store.Credits(), store.Len())
			}
		} else if err == nil || store.Credits() != credits || store.Len() != 0 {
			rt.Fatalf("rejected pull changed state: err=%v credits=%d len=%d", err, store.Credits(), store.Len())
		}
	})
}
