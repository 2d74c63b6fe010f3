package infrastructure

import (
	"math/rand"
	"sync"
	"time"
)

const DefaultConcurrency = 3

type queuedJob struct {
	run  func() error
	done chan error
}

// SendQueue is a bounded-concurrency FIFO job queue. At most limit jobs run
// at once; completion of any running job immediately admits the next queued
// one. Do never fails because of queue pressure, only with the job's own
// error.
type SendQueue struct {
	mu      sync.Mutex
	limit   int
	active  int
	backlog []*queuedJob
}

func NewSendQueue(limit int) *SendQueue {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &SendQueue{limit: limit}
}

// Do enqueues the job and blocks until it has run, returning its error.
func (q *SendQueue) Do(run func() error) error {
	job := &queuedJob{run: run, done: make(chan error, 1)}

	q.mu.Lock()
	q.backlog = append(q.backlog, job)
	if q.active < q.limit {
		q.active++
		go q.worker()
	}
	q.mu.Unlock()

	return <-job.done
}

func (q *SendQueue) worker() {
	for {
		q.mu.Lock()
		if len(q.backlog) == 0 {
			q.active--
			q.mu.Unlock()
			return
		}
		job := q.backlog[0]
		q.backlog = q.backlog[1:]
		q.mu.Unlock()

		job.done <- q.runSafe(job.run)
	}
}

func (q *SendQueue) runSafe(run func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{r}
		}
	}()
	return run()
}

type panicError struct{ v any }

func (e *panicError) Error() string { return "send job panicked" }

// Depth reports queued (not yet running) jobs, exposed on the ops status
// endpoint.
func (q *SendQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Active reports currently running jobs.
func (q *SendQueue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

const (
	typingBaseMin    = 500 * time.Millisecond
	typingBaseSpread = 700 // ms, sampled on top of the minimum
	perCharDelay     = 15 * time.Millisecond
	perCharCap       = 2 * time.Second
)

// PerCharDelay grows with text length and caps at 2s.
func PerCharDelay(length int) time.Duration {
	d := time.Duration(length) * perCharDelay
	if d > perCharCap {
		return perCharCap
	}
	return d
}

// TypingDelay is the simulated-typing pause before a send: a uniform base in
// [500ms, 1200ms] plus the length-proportional component.
func TypingDelay(text string) time.Duration {
	base := typingBaseMin + time.Duration(rand.Intn(typingBaseSpread+1))*time.Millisecond
	return base + PerCharDelay(len(text))
}
