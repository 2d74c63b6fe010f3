package infrastructure

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"project_asesoria/internal/entities"
	"project_asesoria/internal/usecases"
)

type stubTransport struct {
	mu        sync.Mutex
	calls     []string
	typingErr error
	sendErrs  []error // popped per Send call
	clearErr  error
}

func (s *stubTransport) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubTransport) Send(ctx context.Context, chatID, text string) error {
	s.record("send")
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sendErrs) > 0 {
		err := s.sendErrs[0]
		s.sendErrs = s.sendErrs[1:]
		return err
	}
	return nil
}

func (s *stubTransport) SetTyping(ctx context.Context, chatID string) error {
	s.record("typing")
	return s.typingErr
}

func (s *stubTransport) ClearTyping(ctx context.Context, chatID string) error {
	s.record("clear")
	return s.clearErr
}

func (s *stubTransport) Download(ctx context.Context, msg entities.InboundMessage) ([]byte, error) {
	return nil, nil
}

func (s *stubTransport) IsConnected() bool { return true }
func (s *stubTransport) SelfID() string    { return "bot" }

func newTestDispatcher(tr *stubTransport) *Dispatcher {
	d := NewDispatcher(NewSendQueue(1), tr, zerolog.Nop())
	d.sleep = func(time.Duration) {}
	d.delay = func(string) time.Duration { return 0 }
	return d
}

func TestDispatcherPacedDelivery(t *testing.T) {
	tr := &stubTransport{}
	d := newTestDispatcher(tr)

	require.NoError(t, d.Send(context.Background(), "chat1", "hola"))
	require.Equal(t, []string{"typing", "send", "clear"}, tr.calls)
}

func TestDispatcherFallsBackToBareSendWhenTypingFails(t *testing.T) {
	tr := &stubTransport{typingErr: errors.New("presence rejected")}
	d := newTestDispatcher(tr)

	require.NoError(t, d.Send(context.Background(), "chat1", "hola"))
	require.Equal(t, []string{"typing", "send"}, tr.calls)
}

func TestDispatcherRetriesBareOnceWhenPacedSendFails(t *testing.T) {
	tr := &stubTransport{sendErrs: []error{errors.New("socket closed")}}
	d := newTestDispatcher(tr)

	require.NoError(t, d.Send(context.Background(), "chat1", "hola"))
	require.Equal(t, []string{"typing", "send", "clear", "send"}, tr.calls)
}

func TestDispatcherSurfacesFinalSendFailure(t *testing.T) {
	sendErr := errors.New("socket closed")
	tr := &stubTransport{sendErrs: []error{sendErr, sendErr}}
	d := newTestDispatcher(tr)

	err := d.Send(context.Background(), "chat1", "hola")
	require.Error(t, err)

	var engineErr *usecases.Error
	require.ErrorAs(t, err, &engineErr)
	require.Equal(t, usecases.ErrorTransportSend, engineErr.Code)
	require.ErrorIs(t, err, sendErr)
}

func TestDispatcherIgnoresClearTypingFailure(t *testing.T) {
	tr := &stubTransport{clearErr: errors.New("already gone")}
	d := newTestDispatcher(tr)

	require.NoError(t, d.Send(context.Background(), "chat1", "hola"))
	require.Equal(t, []string{"typing", "send", "clear"}, tr.calls)
}
