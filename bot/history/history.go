// Package history keeps a record of published announcements in Postgres.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/rompostbot/bot/publish"
)

// Publication is one row of the publications table.
type Publication struct {
	ID          uuid.UUID `db:"id"`
	SessionID   uuid.UUID `db:"session_id"`
	UserID      int64     `db:"user_id"`
	ChatID      int64     `db:"chat_id"`
	ChannelID   int64     `db:"channel_id"`
	MessageID   int64     `db:"message_id"`
	Title       string    `db:"title"`
	Device      string    `db:"device"`
	Maintainer  string    `db:"maintainer"`
	HasBanner   bool      `db:"has_banner"`
	Caption     string    `db:"caption"`
	PublishedAt time.Time `db:"published_at"`
}

// FromRecord maps a publish record to a new row.
func FromRecord(rec publish.Record) (Publication, error) {
	if rec.Session == nil {
		return Publication{}, fmt.Errorf("history: record without session")
	}
	sessionID, err := uuid.Parse(rec.Session.ID)
	if err != nil {
		return Publication{}, fmt.Errorf("history: session id: %w", err)
	}
	return Publication{
		ID:          uuid.New(),
		SessionID:   sessionID,
		UserID:      rec.UserID,
		ChatID:      rec.ChatID,
		ChannelID:   rec.Message.ChatID,
		MessageID:   int64(rec.Message.MessageID),
		Title:       rec.Session.Title,
		Device:      rec.Session.Device,
		Maintainer:  rec.Session.Maintainer,
		HasBanner:   rec.Session.HasBanner(),
		Caption:     rec.Caption,
		PublishedAt: rec.PublishedAt.UTC(),
	}, nil
}

const insertPublication = `
INSERT INTO publications (
	id, session_id, user_id, chat_id, channel_id, message_id,
	title, device, maintainer, has_banner, caption, published_at
) VALUES (
	:id, :session_id, :user_id, :chat_id, :channel_id, :message_id,
	:title, :device, :maintainer, :has_banner, :caption, :published_at
)`

// Store writes publications through sqlx.
type Store struct {
	db *sqlx.DB
}

var _ publish.Recorder = (*Store)(nil)

// NewStore wraps db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Record inserts rec as a publication row.
func (s *Store) Record(ctx context.Context, rec publish.Record) error {
	row, err := FromRecord(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.NamedExecContext(ctx, insertPublication, row); err != nil {
		return fmt.Errorf("history: insert publication: %w", err)
	}
	return nil
}
