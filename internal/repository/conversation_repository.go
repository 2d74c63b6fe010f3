package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"project_asesoria/internal/entities"
)

// ConversationRepository persists the durable per-chat attributes. Every
// write is an upsert keyed by chat id, so the ops panel and the engine can
// write concurrently without clobbering each other.
type ConversationRepository struct {
	db *pgxpool.Pool
}

func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Get(ctx context.Context, chatID string) (*entities.Conversation, error) {
	var c entities.Conversation
	err := r.db.QueryRow(ctx,
		`SELECT chat_id, name, group_pref, tutorial_asked, tutorial_done, created_at
		 FROM conversations WHERE chat_id = $1`, chatID).
		Scan(&c.ChatID, &c.Name, &c.GroupPref, &c.TutorialAsked, &c.TutorialDone, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepository) Create(ctx context.Context, chatID string) (*entities.Conversation, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO conversations (chat_id) VALUES ($1) ON CONFLICT (chat_id) DO NOTHING`, chatID)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, chatID)
}

func (r *ConversationRepository) SetName(ctx context.Context, chatID, name string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO conversations (chat_id, name) VALUES ($1, $2)
		 ON CONFLICT (chat_id) DO UPDATE SET name = EXCLUDED.name`, chatID, name)
	return err
}

func (r *ConversationRepository) SetGroupPref(ctx context.Context, chatID, group string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO conversations (chat_id, group_pref) VALUES ($1, $2)
		 ON CONFLICT (chat_id) DO UPDATE SET group_pref = EXCLUDED.group_pref`, chatID, group)
	return err
}

func (r *ConversationRepository) MarkTutorialAsked(ctx context.Context, chatID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO conversations (chat_id, tutorial_asked) VALUES ($1, TRUE)
		 ON CONFLICT (chat_id) DO UPDATE SET tutorial_asked = TRUE`, chatID)
	return err
}

func (r *ConversationRepository) MarkTutorialDone(ctx context.Context, chatID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO conversations (chat_id, tutorial_asked, tutorial_done) VALUES ($1, TRUE, TRUE)
		 ON CONFLICT (chat_id) DO UPDATE SET tutorial_asked = TRUE, tutorial_done = TRUE`, chatID)
	return err
}

func (r *ConversationRepository) IsPaused(ctx context.Context, chatID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM paused_chats WHERE chat_id = $1)`, chatID).Scan(&exists)
	return exists, err
}

func (r *ConversationRepository) SetPaused(ctx context.Context, chatID string, paused bool) error {
	if paused {
		_, err := r.db.Exec(ctx,
			`INSERT INTO paused_chats (chat_id) VALUES ($1) ON CONFLICT (chat_id) DO NOTHING`, chatID)
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM paused_chats WHERE chat_id = $1`, chatID)
	return err
}

func (r *ConversationRepository) TouchResponded(ctx context.Context, chatID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO responded_chats (chat_id, last_response) VALUES ($1, NOW())
		 ON CONFLICT (chat_id) DO UPDATE SET last_response = NOW()`, chatID)
	return err
}

// List returns the ops-panel view: every responded or paused chat with its
// durable attributes.
func (r *ConversationRepository) List(ctx context.Context) ([]entities.ConversationEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.chat_id, c.name, r.last_response,
		       (p.chat_id IS NOT NULL) AS paused,
		       c.tutorial_asked, c.tutorial_done
		FROM conversations c
		LEFT JOIN responded_chats r ON r.chat_id = c.chat_id
		LEFT JOIN paused_chats p ON p.chat_id = c.chat_id
		ORDER BY r.last_response DESC NULLS LAST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.ConversationEntry
	for rows.Next() {
		var e entities.ConversationEntry
		var paused bool
		if err := rows.Scan(&e.ChatID, &e.Name, &e.LastResponse, &paused, &e.TutorialAsked, &e.TutorialDone); err != nil {
			return nil, err
		}
		e.Status = "responded"
		if paused {
			e.Status = "paused"
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
