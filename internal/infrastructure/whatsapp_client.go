package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"project_asesoria/internal/entities"
)

// WhatsAppClient wraps whatsmeow behind the Transport port. The device
// session lives in a local SQLite store; a missing session surfaces a QR
// code through GetQR until pairing completes.
type WhatsAppClient struct {
	client *whatsmeow.Client
	log    zerolog.Logger

	qrCode string
	qrLock sync.RWMutex
}

func NewWhatsAppClient(dbPath string, log zerolog.Logger) (*WhatsAppClient, error) {
	waLogger := waLog.Zerolog(log.With().Str("comp", "whatsmeow").Logger())

	container, err := sqlstore.New(context.Background(), "sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)", waLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to open device store: %w", err)
	}
	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return &WhatsAppClient{
		client: whatsmeow.NewClient(deviceStore, waLogger),
		log:    log.With().Str("comp", "whatsapp").Logger(),
	}, nil
}

// Connect establishes the session. Without a stored device it starts the QR
// pairing flow and keeps the latest code available for the ops endpoint.
func (w *WhatsAppClient) Connect() error {
	if w.client.Store.ID != nil {
		return w.client.Connect()
	}

	qrChan, _ := w.client.GetQRChannel(context.Background())
	if err := w.client.Connect(); err != nil {
		return err
	}
	go func() {
		for evt := range qrChan {
			if evt.Event == "code" {
				w.qrLock.Lock()
				w.qrCode = evt.Code
				w.qrLock.Unlock()
				w.log.Info().Msg("new pairing QR available")
			} else {
				w.log.Info().Str("event", evt.Event).Msg("pairing event")
			}
		}
	}()
	return nil
}

func (w *WhatsAppClient) Disconnect() {
	w.client.Disconnect()
}

func (w *WhatsAppClient) GetQR() string {
	w.qrLock.RLock()
	defer w.qrLock.RUnlock()
	return w.qrCode
}

func (w *WhatsAppClient) AddHandler(handler func(any)) {
	w.client.AddEventHandler(handler)
}

func (w *WhatsAppClient) IsConnected() bool {
	return w.client.IsConnected() && w.client.Store.ID != nil
}

func (w *WhatsAppClient) SelfID() string {
	if w.client.Store.ID == nil {
		return ""
	}
	return w.client.Store.ID.ToNonAD().String()
}

func parseJID(chatID string) (types.JID, error) {
	if !strings.ContainsRune(chatID, '@') {
		chatID += "@s.whatsapp.net"
	}
	return types.ParseJID(chatID)
}

func (w *WhatsAppClient) Send(ctx context.Context, chatID, text string) error {
	jid, err := parseJID(chatID)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	_, err = w.client.SendMessage(ctx, jid, &waProto.Message{
		Conversation: &text,
	})
	return err
}

func (w *WhatsAppClient) SetTyping(ctx context.Context, chatID string) error {
	jid, err := parseJID(chatID)
	if err != nil {
		return err
	}
	if err := w.client.SendPresence(ctx, types.PresenceAvailable); err != nil {
		return err
	}
	return w.client.SendChatPresence(ctx, jid, types.ChatPresenceComposing, types.ChatPresenceMediaText)
}

func (w *WhatsAppClient) ClearTyping(ctx context.Context, chatID string) error {
	jid, err := parseJID(chatID)
	if err != nil {
		return err
	}
	return w.client.SendChatPresence(ctx, jid, types.ChatPresencePaused, types.ChatPresenceMediaText)
}

// Download fetches the media bytes of an inbound message. The Payload field
// carries the original protocol message set by ParseMessage.
func (w *WhatsAppClient) Download(ctx context.Context, msg entities.InboundMessage) ([]byte, error) {
	waMsg, ok := msg.Payload.(*waProto.Message)
	if !ok || waMsg == nil {
		return nil, fmt.Errorf("message has no downloadable payload")
	}
	data, err := w.client.DownloadAny(ctx, waMsg)
	if err != nil {
		return nil, fmt.Errorf("media download: %w", err)
	}
	return data, nil
}

// ParseMessage converts a whatsmeow event into the transport-neutral entity.
func (w *WhatsAppClient) ParseMessage(evt *events.Message) entities.InboundMessage {
	m := evt.Message
	msg := entities.InboundMessage{
		ChatID:     evt.Info.Chat.String(),
		SenderID:   evt.Info.Sender.ToNonAD().String(),
		FromSelf:   evt.Info.IsFromMe,
		IsGroup:    evt.Info.IsGroup,
		Payload:    m,
		ReceivedAt: evt.Info.Timestamp,
	}

	switch {
	case m.GetConversation() != "":
		msg.Body = m.GetConversation()
	case m.GetExtendedTextMessage() != nil:
		msg.Body = m.GetExtendedTextMessage().GetText()
	case m.GetImageMessage() != nil:
		msg.Media = entities.MediaImage
		msg.Body = m.GetImageMessage().GetCaption()
	case m.GetDocumentMessage() != nil:
		msg.Media = entities.MediaDocument
		msg.Body = m.GetDocumentMessage().GetCaption()
	case m.GetVideoMessage() != nil:
		msg.Media = entities.MediaVideo
		msg.Body = m.GetVideoMessage().GetCaption()
	case m.GetAudioMessage() != nil:
		msg.Media = entities.MediaAudio
	case m.GetStickerMessage() != nil:
		msg.Media = entities.MediaSticker
	}
	return msg
}
