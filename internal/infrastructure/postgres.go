package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) Migrate() error {
	ctx := context.Background()

	stmts := []struct {
		name string
		sql  string
	}{
		{"conversations", `
			CREATE TABLE IF NOT EXISTS conversations (
				chat_id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(255),
				group_pref VARCHAR(1),
				tutorial_asked BOOLEAN DEFAULT FALSE,
				tutorial_done BOOLEAN DEFAULT FALSE,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"paused_chats", `
			CREATE TABLE IF NOT EXISTS paused_chats (
				chat_id VARCHAR(64) PRIMARY KEY,
				paused_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"responded_chats", `
			CREATE TABLE IF NOT EXISTS responded_chats (
				chat_id VARCHAR(64) PRIMARY KEY,
				last_response TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"settings", `
			CREATE TABLE IF NOT EXISTS settings (
				key VARCHAR(64) PRIMARY KEY,
				value TEXT NOT NULL
			);
		`},
		{"bot_windows", `
			CREATE TABLE IF NOT EXISTS bot_windows (
				id SERIAL PRIMARY KEY,
				dow SMALLINT NOT NULL CHECK (dow BETWEEN 0 AND 6),
				start_time VARCHAR(5) NOT NULL,
				end_time VARCHAR(5) NOT NULL,
				enabled BOOLEAN DEFAULT TRUE
			);
		`},
		{"service_status", `
			CREATE TABLE IF NOT EXISTS service_status (
				service VARCHAR(32) PRIMARY KEY,
				operational BOOLEAN DEFAULT TRUE,
				note TEXT DEFAULT '',
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"class_schedule", `
			CREATE TABLE IF NOT EXISTS class_schedule (
				id SERIAL PRIMARY KEY,
				group_name VARCHAR(1) NOT NULL,
				day_key VARCHAR(64) NOT NULL,
				slot VARCHAR(32) NOT NULL,
				subject VARCHAR(255) NOT NULL,
				position INT DEFAULT 0
			);
		`},
		{"broadcast_targets", `
			CREATE TABLE IF NOT EXISTS broadcast_targets (
				chat_id VARCHAR(64) PRIMARY KEY,
				added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id SERIAL PRIMARY KEY,
				username VARCHAR(50) UNIQUE NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				role VARCHAR(20) DEFAULT 'user',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`},
	}
	for _, s := range stmts {
		if _, err := p.Pool.Exec(ctx, s.sql); err != nil {
			return fmt.Errorf("create %s table: %w", s.name, err)
		}
	}

	// Seed the settings the hours gate reads, and the outage rows the admin
	// commands toggle. ON CONFLICT keeps existing values.
	seeds := []string{
		`INSERT INTO settings (key, value) VALUES ('bot_soft_enabled', 'false') ON CONFLICT (key) DO NOTHING;`,
		`INSERT INTO settings (key, value) VALUES ('bot_tz', 'America/Bogota') ON CONFLICT (key) DO NOTHING;`,
		`INSERT INTO settings (key, value) VALUES ('bot_soft_off_reply', '') ON CONFLICT (key) DO NOTHING;`,
		`INSERT INTO service_status (service) VALUES ('q10'), ('zoom'), ('plataforma') ON CONFLICT (service) DO NOTHING;`,
	}
	for _, s := range seeds {
		if _, err := p.Pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("seed defaults: %w", err)
		}
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
