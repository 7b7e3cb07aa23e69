// Package publish sends finished announcements to the channel.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/rompostbot/bot/chat"
	"github.com/m3rciful/rompostbot/bot/post"
	"github.com/m3rciful/rompostbot/core/logger"
)

// Record describes a completed publication.
type Record struct {
	Session     *post.Session
	UserID      int64
	ChatID      int64
	Message     chat.MessageRef
	Caption     string
	PublishedAt time.Time
}

// Recorder stores publication records.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// Request identifies who publishes which session.
type Request struct {
	Session *post.Session
	UserID  int64
	ChatID  int64
}

// Options configures a Publisher.
type Options struct {
	Client    chat.Client
	ChannelID int64
	Captions  post.CaptionBuilder
	// Recorder is optional.
	Recorder Recorder
	Now      func() time.Time
}

// Publisher posts to a single channel.
type Publisher struct {
	opts Options
}

// New builds a Publisher.
func New(opts Options) *Publisher {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Publisher{opts: opts}
}

// Publish renders the session again and sends it to the channel, as a photo
// caption when a banner is set. A failing Recorder does not fail the publish.
func (p *Publisher) Publish(ctx context.Context, req Request) (Record, error) {
	s := req.Session
	caption := p.opts.Captions.Build(s)

	var (
		ref chat.MessageRef
		err error
	)
	if s.HasBanner() {
		ref, err = p.opts.Client.SendPhoto(ctx, p.opts.ChannelID, s.Banner, caption, chat.SendOptions{})
	} else {
		ref, err = p.opts.Client.SendText(ctx, p.opts.ChannelID, caption, chat.SendOptions{})
	}
	if err != nil {
		return Record{}, fmt.Errorf("publish: send to channel: %w", err)
	}

	rec := Record{
		Session:     s,
		UserID:      req.UserID,
		ChatID:      req.ChatID,
		Message:     ref,
		Caption:     caption,
		PublishedAt: p.opts.Now(),
	}
	logger.Info(ctx, "publish", "publish.sent",
		slog.String("outcome", "published"),
		slog.Int("message_id", ref.MessageID),
		slog.Bool("banner", s.HasBanner()),
	)

	if p.opts.Recorder != nil {
		if err := p.opts.Recorder.Record(ctx, rec); err != nil {
			logger.Error(ctx, "publish", "publish.record",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}
	return rec, nil
}
