package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/jackc/pgx/v5"
)

const createTopicsTable = `
CREATE TABLE IF NOT EXISTS topics (
	name       TEXT PRIMARY KEY,
	content    TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema creates the topics table if it is missing
func (p *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, createTopicsTable); err != nil {
		return fmt.Errorf("failed to create topics table: %w", err)
	}
	return nil
}

// ReadTopic loads the content of a topic
func (p *PostgresClient) ReadTopic(ctx context.Context, name string) (string, error) {
	var content string
	err := p.pool.QueryRow(ctx, `SELECT content FROM topics WHERE name = $1`, name).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", host.ErrTopicNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read topic %s: %w", name, err)
	}
	return content, nil
}

// WriteTopic replaces the content of a topic
func (p *PostgresClient) WriteTopic(ctx context.Context, name, text string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO topics (name, content, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET content = EXCLUDED.content, updated_at = NOW()
	`, name, text)
	if err != nil {
		return fmt.Errorf("failed to write topic %s: %w", name, err)
	}
	return nil
}

// WriteAppendTopic appends text to a topic, creating it if needed
func (p *PostgresClient) WriteAppendTopic(ctx context.Context, name, text string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO topics (name, content, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET content = topics.content || EXCLUDED.content, updated_at = NOW()
	`, name, text)
	if err != nil {
		return fmt.Errorf("failed to append to topic %s: %w", name, err)
	}
	return nil
}
