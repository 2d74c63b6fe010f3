package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"project_asesoria/internal/entities"
	"project_asesoria/internal/usecases"
)

const (
	keySoftEnabled  = "bot_soft_enabled"
	keyTimezone     = "bot_tz"
	keySoftOffReply = "bot_soft_off_reply"
)

// SettingsRepository backs the hours gate and the ops settings screen with
// the key-value settings table plus the bot_windows table.
type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

// GateConfig assembles the business-hours snapshot the gate caches.
func (r *SettingsRepository) GateConfig(ctx context.Context) (usecases.GateConfig, error) {
	var cfg usecases.GateConfig

	enabled, err := r.Get(ctx, keySoftEnabled)
	if err != nil {
		return cfg, err
	}
	cfg.Enabled, _ = strconv.ParseBool(enabled)

	if cfg.Timezone, err = r.Get(ctx, keyTimezone); err != nil {
		return cfg, err
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "America/Bogota"
	}
	if cfg.OffReply, err = r.Get(ctx, keySoftOffReply); err != nil {
		return cfg, err
	}

	cfg.Windows, err = r.Windows(ctx)
	return cfg, err
}

func (r *SettingsRepository) Windows(ctx context.Context) ([]entities.Window, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, dow, start_time, end_time, enabled FROM bot_windows ORDER BY dow, start_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.Window
	for rows.Next() {
		var w entities.Window
		if err := rows.Scan(&w.ID, &w.Weekday, &w.Start, &w.End, &w.Enabled); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ReplaceWindows swaps the full window set in one transaction, the way the
// ops screen saves it.
func (r *SettingsRepository) ReplaceWindows(ctx context.Context, windows []entities.Window) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM bot_windows`); err != nil {
		return err
	}
	for _, w := range windows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO bot_windows (dow, start_time, end_time, enabled) VALUES ($1, $2, $3, $4)`,
			w.Weekday, w.Start, w.End, w.Enabled); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SetGate persists the toggle / timezone / off-hours reply trio.
func (r *SettingsRepository) SetGate(ctx context.Context, enabled bool, timezone, offReply string) error {
	if err := r.Set(ctx, keySoftEnabled, strconv.FormatBool(enabled)); err != nil {
		return err
	}
	if timezone != "" {
		if err := r.Set(ctx, keyTimezone, timezone); err != nil {
			return err
		}
	}
	return r.Set(ctx, keySoftOffReply, offReply)
}

// BroadcastTargets lists the /aviso fan-out recipients.
func (r *SettingsRepository) BroadcastTargets(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT chat_id FROM broadcast_targets ORDER BY added_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *SettingsRepository) AddBroadcastTarget(ctx context.Context, chatID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO broadcast_targets (chat_id) VALUES ($1) ON CONFLICT (chat_id) DO NOTHING`, chatID)
	return err
}
