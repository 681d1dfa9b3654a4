package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteCreateTopics = `
CREATE TABLE IF NOT EXISTS topics (
	name       TEXT PRIMARY KEY NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteStore keeps topics in a single sqlite file.
type SQLiteStore struct {
	db *sqlx.DB
}

func OpenSQLiteStore(fileName string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", fileName, err)
	}
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(sqliteCreateTopics); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create topics table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ReadTopic(ctx context.Context, name string) (string, error) {
	var content string
	err := s.db.GetContext(ctx, &content, `SELECT content FROM topics WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", host.ErrTopicNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read topic %s: %w", name, err)
	}
	return content, nil
}

func (s *SQLiteStore) WriteTopic(ctx context.Context, name, text string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topics (name, content, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET content = excluded.content, updated_at = CURRENT_TIMESTAMP`,
		name, text)
	if err != nil {
		return fmt.Errorf("failed to write topic %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) WriteAppendTopic(ctx context.Context, name, text string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topics (name, content, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET content = topics.content || excluded.content, updated_at = CURRENT_TIMESTAMP`,
		name, text)
	if err != nil {
		return fmt.Errorf("failed to append to topic %s: %w", name, err)
	}
	return nil
}
