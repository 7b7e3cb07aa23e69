// Package flow drives the step-by-step conversation that composes a post.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/rompostbot/bot/chat"
	"github.com/m3rciful/rompostbot/bot/post"
	"github.com/m3rciful/rompostbot/bot/publish"
	"github.com/m3rciful/rompostbot/core/logger"
	"github.com/m3rciful/rompostbot/core/telegram/format"
	"github.com/m3rciful/rompostbot/core/telegram/state"
)

// Mirror hosts long-form attachments and returns links to them.
type Mirror interface {
	PostText(ctx context.Context, heading, text string) (string, error)
	PostPhoto(ctx context.Context, heading, fileID string) (string, error)
}

// Publisher sends the finished post to the channel.
type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (publish.Record, error)
}

// Credit names the bot author in the greeting.
type Credit struct {
	Name string
	URL  string
}

// Options configures an Engine.
type Options struct {
	Client    chat.Client
	Mirror    Mirror
	Publisher Publisher
	Captions  post.CaptionBuilder

	// ChannelID is the channel whose admins may start a post.
	ChannelID int64
	Credit    Credit

	IdleTimeout time.Duration
	Now         func() time.Time
}

// Engine owns the conversations of every (user, chat) pair.
type Engine struct {
	client    chat.Client
	mirror    Mirror
	publisher Publisher
	captions  post.CaptionBuilder
	channelID int64
	credit    Credit
	now       func() time.Time

	sessions *state.Store[*conversation]
	steps    map[state.State]stepFunc
}

// New builds an Engine.
func New(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Engine{
		client:    opts.Client,
		mirror:    opts.Mirror,
		publisher: opts.Publisher,
		captions:  opts.Captions,
		channelID: opts.ChannelID,
		credit:    opts.Credit,
		now:       opts.Now,
		sessions:  state.NewStore[*conversation](state.Options{IdleTimeout: opts.IdleTimeout, Now: opts.Now}),
	}
	e.steps = e.transitions()
	return e
}

// InProgress reports whether key has a live conversation.
func (e *Engine) InProgress(key state.Key) bool {
	return e.sessions.InProgress(key)
}

// Step returns the current step of key, or state.StateIdle.
func (e *Engine) Step(key state.Key) state.State {
	return e.sessions.State(key)
}

// Handle processes one event. Events of the same key are handled one at a time.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	unlock := e.sessions.Lock(ev.Key)
	defer unlock()

	switch ev.Command {
	case CommandStart:
		return e.start(ctx, ev)
	case CommandHelp:
		return e.send(ctx, ev.Key.ChatID, say(helpText))
	case CommandCancel:
		return e.cancel(ctx, ev)
	}

	entry, ok := e.sessions.Get(ev.Key)
	if !ok {
		return e.idle(ctx, ev)
	}
	conv := entry.Data
	ctx = logger.WithSessionID(ctx, conv.session.ID)

	if ev.Kind == EventCallback && entry.State != StepConfirm {
		return e.client.AnswerCallback(ctx, ev.CallbackID, msgStaleBtn)
	}

	step, ok := e.steps[entry.State]
	if !ok {
		return fmt.Errorf("flow: no handler for step %q", entry.State)
	}
	next, r, err := step(ctx, conv, ev)
	if err != nil {
		logger.Warn(ctx, "flow", "step.failed",
			slog.String("status", "fail"),
			slog.String("step", string(entry.State)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("flow: step %s: %w", entry.State, err)
	}

	switch {
	case terminal(next):
		e.sessions.End(ev.Key)
		outcome := "published"
		if next == StepCancelled {
			outcome = "cancelled"
		}
		logger.Info(ctx, "flow", "session.end",
			slog.String("step", string(entry.State)),
			slog.String("outcome", outcome),
			slog.Duration("duration", logger.RoundMS(e.now().Sub(conv.session.StartedAt))),
		)
	default:
		e.sessions.SetState(ev.Key, next)
		logger.Debug(ctx, "flow", "step.handled",
			slog.String("step", string(entry.State)),
			slog.String("next_step", string(next)),
			slog.String("command", ev.Command.String()),
			slog.Int("screenshots", len(conv.session.Screenshots)),
			slog.Int("downloads", len(conv.session.Downloads)),
		)
	}
	return e.send(ctx, ev.Key.ChatID, r)
}

func (e *Engine) start(ctx context.Context, ev Event) error {
	role, err := e.client.MemberRole(ctx, e.channelID, ev.Key.UserID)
	if err != nil {
		return fmt.Errorf("flow: check channel role: %w", err)
	}
	if !role.IsAdmin() {
		logger.Info(ctx, "flow", "session.denied",
			slog.String("outcome", "rejected"),
			slog.String("role", string(role)),
		)
		return e.send(ctx, ev.Key.ChatID, say(msgNotAdmin))
	}

	restarted := e.sessions.InProgress(ev.Key)
	conv := &conversation{session: post.NewSession(e.now())}
	e.sessions.Begin(ev.Key, StepBanner, conv)
	logger.Info(logger.WithSessionID(ctx, conv.session.ID), "flow", "session.start",
		slog.String("status", "ok"),
		slog.Bool("restarted", restarted),
	)
	return e.send(ctx, ev.Key.ChatID, reply{
		text: e.greeting(),
		opts: chat.SendOptions{RemoveKeyboard: true, DisablePreview: true},
	})
}

func (e *Engine) greeting() string {
	var b strings.Builder
	b.WriteString("🤖 <b>ROM Post Bot</b>")
	if e.credit.Name != "" {
		b.WriteString(" by " + format.Bold(e.credit.Name))
	}
	if e.credit.URL != "" {
		b.WriteString("\nGitHub: " + format.EscapeHTML(e.credit.URL))
	}
	b.WriteString("\n\n" + promptBanner)
	return b.String()
}

func (e *Engine) cancel(ctx context.Context, ev Event) error {
	entry, ok := e.sessions.Get(ev.Key)
	if !ok {
		return e.send(ctx, ev.Key.ChatID, say(msgNoSession))
	}
	e.sessions.End(ev.Key)
	conv := entry.Data
	ctx = logger.WithSessionID(ctx, conv.session.ID)
	logger.Info(ctx, "flow", "session.end",
		slog.String("step", string(entry.State)),
		slog.String("outcome", "cancelled"),
	)

	if entry.State == StepConfirm && e.closePreview(ctx, conv, msgCancelled) {
		return nil
	}
	return e.send(ctx, ev.Key.ChatID, say(msgCancelled))
}

// idle answers events that arrive without a live conversation.
func (e *Engine) idle(ctx context.Context, ev Event) error {
	switch {
	case ev.Kind == EventCallback:
		return e.client.AnswerCallback(ctx, ev.CallbackID, msgStaleBtn)
	case ev.Command == CommandSkip || ev.Command == CommandDone:
		return e.send(ctx, ev.Key.ChatID, say(msgNoSession))
	}
	return nil
}

// closePreview replaces the preview with text, dropping its buttons.
// It reports whether the edit went through.
func (e *Engine) closePreview(ctx context.Context, conv *conversation, text string) bool {
	if conv.preview.IsZero() {
		return false
	}
	if err := e.client.EditText(ctx, conv.preview, text, chat.SendOptions{}); err != nil {
		logger.Warn(ctx, "flow", "preview.edit",
			slog.String("status", "fail"),
			slog.Int("message_id", conv.preview.MessageID),
			slog.String("err", err.Error()),
		)
		return false
	}
	return true
}

func (e *Engine) send(ctx context.Context, chatID int64, r reply) error {
	if r.text == "" {
		return nil
	}
	if _, err := e.client.SendText(ctx, chatID, r.text, r.opts); err != nil {
		return fmt.Errorf("flow: reply: %w", err)
	}
	return nil
}

// RunJanitor removes idle conversations every interval and tells their
// chats. It blocks until ctx is done.
func (e *Engine) RunJanitor(ctx context.Context, every time.Duration) {
	e.sessions.RunJanitor(ctx, every, func(key state.Key) {
		e.expire(ctx, key)
	})
}

// ExpireIdle runs one janitor pass and returns the number of conversations removed.
func (e *Engine) ExpireIdle(ctx context.Context) int {
	keys := e.sessions.Sweep()
	for _, key := range keys {
		e.expire(ctx, key)
	}
	return len(keys)
}

func (e *Engine) expire(ctx context.Context, key state.Key) {
	unlock := e.sessions.Lock(key)
	defer unlock()
	if e.sessions.InProgress(key) {
		// The user started over after the sweep.
		return
	}
	ctx = logger.WithUpdateMeta(ctx, 0, key.UserID, key.ChatID)
	logger.Info(ctx, "flow", "session.end", slog.String("outcome", "expired"))
	if _, err := e.client.SendText(ctx, key.ChatID, msgExpired, chat.SendOptions{}); err != nil {
		logger.Warn(ctx, "flow", "expire.notify",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}
