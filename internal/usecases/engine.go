package usecases

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"project_asesoria/internal/entities"
)

// Handler processes one inbound message to completion.
type Handler interface {
	Handle(ctx context.Context, msg entities.InboundMessage) error
}

// convQueue is the single-owner mailbox of one conversation. While busy, new
// messages append to the backlog and the running goroutine drains them in
// arrival order.
type convQueue struct {
	busy    bool
	backlog []entities.InboundMessage
}

// Engine routes every inbound message for a given chat through that chat's
// mailbox, so two rapid messages from one conversation are processed strictly
// in arrival order while unrelated conversations proceed in parallel.
type Engine struct {
	handler Handler
	log     zerolog.Logger

	mu     sync.Mutex
	queues map[string]*convQueue
	wg     sync.WaitGroup
}

func NewEngine(handler Handler, log zerolog.Logger) *Engine {
	return &Engine{
		handler: handler,
		log:     log.With().Str("comp", "engine").Logger(),
		queues:  make(map[string]*convQueue),
	}
}

// Submit accepts one inbound message. It never blocks on handling.
func (e *Engine) Submit(ctx context.Context, msg entities.InboundMessage) {
	e.mu.Lock()
	q, ok := e.queues[msg.ChatID]
	if !ok {
		q = &convQueue{}
		e.queues[msg.ChatID] = q
	}
	if q.busy {
		q.backlog = append(q.backlog, msg)
		e.mu.Unlock()
		return
	}
	q.busy = true
	e.mu.Unlock()

	e.wg.Add(1)
	go e.drain(ctx, msg, q)
}

func (e *Engine) drain(ctx context.Context, first entities.InboundMessage, q *convQueue) {
	defer e.wg.Done()
	msg := first
	for {
		e.process(ctx, msg)

		e.mu.Lock()
		if len(q.backlog) == 0 {
			q.busy = false
			delete(e.queues, msg.ChatID)
			e.mu.Unlock()
			return
		}
		msg = q.backlog[0]
		q.backlog = q.backlog[1:]
		e.mu.Unlock()
	}
}

// process contains a single message's failure: a panicking or erroring
// handler is logged and the conversation simply gets no reply.
func (e *Engine) process(ctx context.Context, msg entities.InboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("chat", msg.ChatID).Interface("panic", r).Msg("handler panicked")
		}
	}()
	if err := e.handler.Handle(ctx, msg); err != nil {
		e.log.Error().Str("chat", msg.ChatID).Err(err).Msg("handler failed")
	}
}

// Wait blocks until every in-flight mailbox drains, used on shutdown.
func (e *Engine) Wait() {
	e.wg.Wait()
}
