package usecases

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"project_asesoria/internal/entities"
)

type recordingHandler struct {
	mu      sync.Mutex
	order   []string
	delay   time.Duration
	err     error
	panicOn string
}

func (h *recordingHandler) Handle(ctx context.Context, msg entities.InboundMessage) error {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	if msg.Body == h.panicOn && h.panicOn != "" {
		panic("boom")
	}
	h.mu.Lock()
	h.order = append(h.order, msg.ChatID+":"+msg.Body)
	h.mu.Unlock()
	return h.err
}

func TestEngineSerializesMessagesPerConversation(t *testing.T) {
	h := &recordingHandler{delay: 5 * time.Millisecond}
	e := NewEngine(h, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		e.Submit(ctx, entities.InboundMessage{ChatID: "chat1", Body: fmt.Sprintf("m%d", i)})
	}
	e.Wait()

	require.Len(t, h.order, 10)
	for i, got := range h.order {
		require.Equal(t, fmt.Sprintf("chat1:m%d", i), got)
	}
}

func TestEngineProcessesConversationsIndependently(t *testing.T) {
	h := &recordingHandler{}
	e := NewEngine(h, zerolog.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.Submit(ctx, entities.InboundMessage{ChatID: fmt.Sprintf("chat%d", i%4), Body: "x"})
		}(i)
	}
	wg.Wait()
	e.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.order, 20)
}

func TestEngineContainsPanicsAndKeepsDraining(t *testing.T) {
	h := &recordingHandler{panicOn: "bad"}
	e := NewEngine(h, zerolog.Nop())
	ctx := context.Background()

	e.Submit(ctx, entities.InboundMessage{ChatID: "chat1", Body: "ok1"})
	e.Submit(ctx, entities.InboundMessage{ChatID: "chat1", Body: "bad"})
	e.Submit(ctx, entities.InboundMessage{ChatID: "chat1", Body: "ok2"})
	e.Wait()

	require.Equal(t, []string{"chat1:ok1", "chat1:ok2"}, h.order)
}

func TestEngineSwallowsHandlerErrors(t *testing.T) {
	h := &recordingHandler{err: fmt.Errorf("handler broke")}
	e := NewEngine(h, zerolog.Nop())

	e.Submit(context.Background(), entities.InboundMessage{ChatID: "chat1", Body: "x"})
	e.Wait()
	require.Len(t, h.order, 1)
}
