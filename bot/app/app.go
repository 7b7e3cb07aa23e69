// Package app wires the ROM post conversation into the Telegram runtime.
package app

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/rompostbot/bot/chat"
	"github.com/m3rciful/rompostbot/bot/config"
	"github.com/m3rciful/rompostbot/bot/flow"
	"github.com/m3rciful/rompostbot/bot/history"
	"github.com/m3rciful/rompostbot/bot/mirror"
	"github.com/m3rciful/rompostbot/bot/post"
	"github.com/m3rciful/rompostbot/bot/publish"
	"github.com/m3rciful/rompostbot/core/buildinfo"
	corecmd "github.com/m3rciful/rompostbot/core/cmd"
	"github.com/m3rciful/rompostbot/core/health"
	"github.com/m3rciful/rompostbot/core/logger"
	coretelegram "github.com/m3rciful/rompostbot/core/telegram"
	"github.com/m3rciful/rompostbot/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

const msgGenericError = "⚠️ Something went wrong, please try again."

// Options carries infrastructure built during bootstrap.
type Options struct {
	// DB enables the publication history when set.
	DB *sqlx.DB
	// Client replaces the Telegram client; the running bot is attached
	// to the default one on start.
	Client chat.Client
}

// App is the ROM post bot.
type App struct {
	cfg      *config.Config
	db       *sqlx.DB
	telebot  *chat.Telebot
	engine   *flow.Engine
	registry *coretelegram.Registry
}

var (
	_ corecmd.TelegramApp     = (*App)(nil)
	_ corecmd.ServiceProvider = (*App)(nil)
	_ corecmd.Closer          = (*App)(nil)
)

// New builds the app from a normalized cfg.
func New(cfg *config.Config, opts Options) *App {
	a := &App{cfg: cfg, db: opts.DB}

	client := opts.Client
	if client == nil {
		a.telebot = chat.NewTelebot(nil)
		client = a.telebot
	}

	captions := post.NewCaptionBuilder(post.Branding{
		SupportURL: cfg.Branding.SupportURL,
		Footer:     cfg.Branding.Footer,
	})
	pubOpts := publish.Options{
		Client:    client,
		ChannelID: cfg.Channel.ID,
		Captions:  captions,
	}
	if opts.DB != nil {
		pubOpts.Recorder = history.NewStore(opts.DB)
	}

	a.engine = flow.New(flow.Options{
		Client:      client,
		Mirror:      mirror.New(client, cfg.Channel.DiscussionID, cfg.Channel.LinkHost),
		Publisher:   publish.New(pubOpts),
		Captions:    captions,
		ChannelID:   cfg.Channel.ID,
		Credit:      flow.Credit{Name: cfg.Branding.CreditName, URL: cfg.Branding.CreditURL},
		IdleTimeout: cfg.Session.IdleTimeout(),
	})
	a.registry = buildRegistry(updates{engine: a.engine})
	return a
}

// Engine exposes the conversation engine.
func (a *App) Engine() *flow.Engine { return a.engine }

// Registry exposes the command and callback registry.
func (a *App) Registry() *coretelegram.Registry { return a.registry }

// TelegramRunOptions assembles middlewares and routes for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	fsm := updates{engine: a.engine}

	routes := router.CommandRoutes(a.registry)
	routes = append(routes, router.MessageRoutes(fsm, a.registry, router.MessageOptions{})...)
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes:      routes,
		OnError:     replyOnError,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			if a.telebot != nil {
				a.telebot.Attach(rt.Bot)
			}
			logger.Info(ctx, "app", "wired",
				slog.Int64("channel_id", a.cfg.Channel.ID),
				slog.Int64("discussion_id", a.cfg.Channel.DiscussionID),
				slog.Bool("history", a.db != nil),
				slog.String("build", buildinfo.String()),
			)
			return nil
		},
	}, nil
}

// Services returns the liveness endpoint and the session janitor.
func (a *App) Services() []corecmd.Service {
	return []corecmd.Service{
		{Name: "health", Run: health.NewServer(a.cfg.Health).Run},
		{Name: "janitor", Run: func(ctx context.Context) error {
			a.engine.RunJanitor(ctx, a.cfg.Session.JanitorInterval())
			return nil
		}},
	}
}

// Close releases the database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// replyOnError tells the user a transport failure happened. Their answers so
// far are kept.
func replyOnError(_ error, c tele.Context) {
	if c == nil {
		return
	}
	if c.Callback() != nil {
		_ = c.Respond(&tele.CallbackResponse{Text: msgGenericError})
		return
	}
	if c.Chat() != nil {
		_ = c.Send(msgGenericError)
	}
}
