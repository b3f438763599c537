// Package store keeps an audit log of publish attempts. It is never consulted
// when choosing what to post.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/RobinCoderZhao/newsbot/pkg/storage"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS posts (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    url         TEXT NOT NULL,
    country     TEXT,
    fullname    TEXT,
    status      TEXT NOT NULL,
    error       TEXT,
    created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS posts (
    id          BIGSERIAL PRIMARY KEY,
    title       TEXT NOT NULL,
    url         TEXT NOT NULL,
    country     TEXT,
    fullname    TEXT,
    status      TEXT NOT NULL,
    error       TEXT,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at);
`

// Status of a publish attempt.
type Status string

const (
	StatusPosted     Status = "posted"
	StatusUnapproved Status = "unapproved"
	StatusFailed     Status = "failed"
)

// Post is one recorded publish attempt.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Country   string    `json:"country"`
	Fullname  string    `json:"fullname,omitempty"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store provides publish history persistence.
type Store struct {
	db *storage.DB
}

// New creates a Store on an open database and initializes the schema.
func New(ctx context.Context, db *storage.DB) (*Store, error) {
	schema := sqliteSchema
	if db.DriverType() == storage.Postgres {
		schema = postgresSchema
	}
	if err := db.Migrate(ctx, schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordPost stores a publish attempt. A zero CreatedAt is set to now.
func (s *Store) RecordPost(ctx context.Context, p Post) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO posts (title, url, country, fullname, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), p.Title, p.URL, p.Country, p.Fullname, string(p.Status), p.Error, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("record post: %w", err)
	}
	return nil
}

// RecentPosts returns the latest publish attempts, newest first.
func (s *Store) RecentPosts(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT id, title, url, country, fullname, status, error, created_at
		FROM posts ORDER BY id DESC LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		var country, fullname, errMsg sql.NullString
		var status string
		if err := rows.Scan(&p.ID, &p.Title, &p.URL, &country, &fullname, &status, &errMsg, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Country = country.String
		p.Fullname = fullname.String
		p.Error = errMsg.String
		p.Status = Status(status)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
