package interfaces

import (
	"context"

	"project_asesoria/internal/entities"
)

// Transport is the messaging platform the engine rides on.
type Transport interface {
	Send(ctx context.Context, chatID, text string) error
	SetTyping(ctx context.Context, chatID string) error
	ClearTyping(ctx context.Context, chatID string) error
	Download(ctx context.Context, msg entities.InboundMessage) ([]byte, error)
	IsConnected() bool
	SelfID() string
}

// Completer produces a language-model reply for a conversation history.
type Completer interface {
	Complete(ctx context.Context, turns []entities.ChatTurn) (string, error)
}

// Transcriber turns an audio attachment into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Notifier is an optional out-of-band channel for operator escalations.
type Notifier interface {
	Notify(text string) error
}
