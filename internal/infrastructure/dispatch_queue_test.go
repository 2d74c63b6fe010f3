package infrastructure

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueNeverExceedsConcurrencyCeiling(t *testing.T) {
	q := NewSendQueue(3)

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := q.Do(func() error {
				cur := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	require.Greater(t, atomic.LoadInt32(&peak), int32(0))
}

func TestQueueAdmitsInFIFOOrder(t *testing.T) {
	// Single slot makes admission order observable as execution order.
	q := NewSendQueue(1)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	block := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.Do(func() error { <-block; return nil })
	}()

	// Wait until the blocker occupies the slot.
	require.Eventually(t, func() bool { return q.Active() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Do(func() error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		// Stagger submissions so FIFO admission order is deterministic.
		require.Eventually(t, func() bool { return q.Depth() == i+1 }, time.Second, time.Millisecond)
	}

	close(block)
	wg.Wait()

	require.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestQueuePropagatesJobError(t *testing.T) {
	q := NewSendQueue(2)
	wantErr := fmt.Errorf("send failed")
	require.ErrorIs(t, q.Do(func() error { return wantErr }), wantErr)
	require.NoError(t, q.Do(func() error { return nil }))
}

func TestQueueSurvivesPanickingJob(t *testing.T) {
	q := NewSendQueue(1)
	err := q.Do(func() error { panic("boom") })
	require.Error(t, err)

	// The slot is released and the queue keeps working.
	require.NoError(t, q.Do(func() error { return nil }))
	require.Eventually(t, func() bool { return q.Active() == 0 }, time.Second, time.Millisecond)
}

func TestPerCharDelayGrowsAndCaps(t *testing.T) {
	require.Equal(t, time.Duration(0), PerCharDelay(0))
	require.Equal(t, 150*time.Millisecond, PerCharDelay(10))
	require.Equal(t, 2*time.Second, PerCharDelay(1000))

	// Monotonically non-decreasing up to the cap.
	prev := time.Duration(-1)
	for n := 0; n <= 200; n += 10 {
		d := PerCharDelay(n)
		require.GreaterOrEqual(t, d, prev)
		prev = d
	}
}

func TestTypingDelayBounds(t *testing.T) {
	text := "hola, ¿cómo estás?"
	perChar := PerCharDelay(len(text))
	for i := 0; i < 200; i++ {
		d := TypingDelay(text)
		require.GreaterOrEqual(t, d, 500*time.Millisecond+perChar)
		require.LessOrEqual(t, d, 1200*time.Millisecond+perChar)
	}
}
