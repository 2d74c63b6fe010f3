package entities

import "time"

type MediaKind string

const (
	MediaNone     MediaKind = ""
	MediaImage    MediaKind = "image"
	MediaAudio    MediaKind = "audio"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
	MediaSticker  MediaKind = "sticker"
)

// InboundMessage is one received chat message, immutable once parsed.
type InboundMessage struct {
	ChatID     string
	SenderID   string
	Body       string // raw text or media caption
	FromSelf   bool
	IsGroup    bool
	Media      MediaKind
	Payload    any // transport-specific handle, used to download media
	ReceivedAt time.Time
}

// OutboundJob is one queued send, consumed exactly once by the dispatch queue.
type OutboundJob struct {
	ID         string
	ChatID     string
	Text       string
	EnqueuedAt time.Time
}

// ChatTurn is one message of a completion-service conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
