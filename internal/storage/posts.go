// Package storage archives published posts so admins can audit what the
// bot has sent. History is strictly best effort and independent of the
// in-memory session flow.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cinemareddy/postbot/internal/domain"
)

// PostRecord is one published post.
type PostRecord struct {
	ID        uuid.UUID      `db:"id"`
	UserID    int64          `db:"user_id"`
	ChatID    int64          `db:"chat_id"`
	Title     string         `db:"title"`
	TMDBID    int64          `db:"tmdb_id"`
	Print     string         `db:"print"`
	Languages pq.StringArray `db:"languages"`
	Link      string         `db:"link"`
	PostedAt  time.Time      `db:"posted_at"`
}

// Repo persists post history in Postgres.
type Repo struct {
	db *sqlx.DB
}

// NewRepo builds a Repo on an open connection.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// Record stores one published post. It satisfies usecase.PostRecorder.
func (r *Repo) Record(ctx context.Context, userID, chatID, tmdbID int64, post domain.Post, req domain.ParsedRequest) error {
	rec := PostRecord{
		ID:        uuid.New(),
		UserID:    userID,
		ChatID:    chatID,
		Title:     req.Title,
		TMDBID:    tmdbID,
		Print:     req.PrintCode,
		Languages: pq.StringArray(req.LanguageCodes),
		Link:      req.Link,
		PostedAt:  time.Now().UTC(),
	}
	const query = `
		INSERT INTO posts (id, user_id, chat_id, title, tmdb_id, print, languages, link, posted_at)
		VALUES (:id, :user_id, :chat_id, :title, :tmdb_id, :print, :languages, :link, :posted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("insert post record: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]PostRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var records []PostRecord
	const query = `
		SELECT id, user_id, chat_id, title, tmdb_id, print, languages, link, posted_at
		FROM posts ORDER BY posted_at DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("select recent posts: %w", err)
	}
	return records, nil
}

// FormatRecent renders records as a compact text block for the admin chat.
func FormatRecent(records []PostRecord) string {
	if len(records) == 0 {
		return "No posts recorded yet."
	}
	var b strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. %s [%s] %s\n",
			i+1, rec.Title, rec.Print, rec.PostedAt.Format("2006-01-02 15:04"))
	}
	return strings.TrimRight(b.String(), "\n")
}
