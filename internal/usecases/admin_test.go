package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBroadcastFansOutWithSpacing(t *testing.T) {
	sender := &recSender{}
	var gaps []time.Duration
	a := NewAdminCommands(newFakeOutages(), &fakeTargets{targets: []string{"c1", "c2", "c3"}}, sender, zerolog.Nop())
	a.sleep = func(d time.Duration) { gaps = append(gaps, d) }

	handled, err := a.Handle(context.Background(), "admin-chat", "/aviso Clase cancelada hoy")
	require.True(t, handled)
	require.NoError(t, err)

	sent := sender.all()
	require.Len(t, sent, 4) // three targets plus the confirmation
	for i, target := range []string{"c1", "c2", "c3"} {
		require.Equal(t, target, sent[i].ChatID)
		require.Contains(t, sent[i].Text, "📢 *Aviso importante*")
		require.Contains(t, sent[i].Text, "Clase cancelada hoy")
	}
	require.Equal(t, "admin-chat", sent[3].ChatID)
	require.Contains(t, sent[3].Text, "3 chats")

	for _, g := range gaps {
		require.GreaterOrEqual(t, g, 400*time.Millisecond)
		require.LessOrEqual(t, g, 1000*time.Millisecond)
	}
}

func TestBroadcastSkipsAdminChatAndEmptyBody(t *testing.T) {
	sender := &recSender{}
	a := NewAdminCommands(newFakeOutages(), &fakeTargets{targets: []string{"admin-chat", "c2"}}, sender, zerolog.Nop())
	a.sleep = func(time.Duration) {}

	handled, err := a.Handle(context.Background(), "admin-chat", "/aviso hay clase")
	require.True(t, handled)
	require.NoError(t, err)

	sent := sender.all()
	require.Len(t, sent, 2) // only c2 plus the confirmation
	require.Equal(t, "c2", sent[0].ChatID)

	sender.sent = nil
	handled, err = a.Handle(context.Background(), "admin-chat", "/aviso")
	require.True(t, handled)
	require.NoError(t, err)
	require.Contains(t, sender.last().Text, "Uso: /aviso")
}

func TestUnknownSlashCommandIsNotHandled(t *testing.T) {
	a := NewAdminCommands(newFakeOutages(), &fakeTargets{}, &recSender{}, zerolog.Nop())
	handled, err := a.Handle(context.Background(), "admin-chat", "/reinicio")
	require.False(t, handled)
	require.NoError(t, err)

	handled, _ = a.Handle(context.Background(), "admin-chat", "hola")
	require.False(t, handled)
}

func TestServiceCommandValidatesArguments(t *testing.T) {
	sender := &recSender{}
	a := NewAdminCommands(newFakeOutages(), &fakeTargets{}, sender, zerolog.Nop())

	handled, err := a.Handle(context.Background(), "admin-chat", "/zoom")
	require.True(t, handled)
	require.NoError(t, err)
	require.Contains(t, sender.last().Text, "Uso: /zoom ok|down")

	handled, err = a.Handle(context.Background(), "admin-chat", "/zoom quizas")
	require.True(t, handled)
	require.NoError(t, err)
	require.Contains(t, sender.last().Text, "Uso: /zoom ok|down")
}

func TestServiceRecoveryCommand(t *testing.T) {
	outages := newFakeOutages()
	sender := &recSender{}
	a := NewAdminCommands(outages, &fakeTargets{}, sender, zerolog.Nop())

	_, err := a.Handle(context.Background(), "admin-chat", "/plataforma down mantenimiento db")
	require.NoError(t, err)
	_, err = a.Handle(context.Background(), "admin-chat", "/plataforma ok")
	require.NoError(t, err)

	statuses, _ := outages.ServiceStatuses(context.Background())
	for _, s := range statuses {
		if s.Service == "plataforma" {
			require.True(t, s.Operational)
		}
	}
}
