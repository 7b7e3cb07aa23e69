package router

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/rompostbot/core/telegram"
	"github.com/m3rciful/rompostbot/core/telegram/commands"
)

type fakeFSM struct {
	active  bool
	handled int
}

func (f *fakeFSM) InProgress(tele.Context) bool { return f.active }

func (f *fakeFSM) HandleUpdate(tele.Context) error {
	f.handled++
	return nil
}

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return bot
}

func textUpdate(text string) tele.Update {
	return tele.Update{ID: 1, Message: &tele.Message{
		Text:   text,
		Sender: &tele.User{ID: 7},
		Chat:   &tele.Chat{ID: 7, Type: tele.ChatPrivate},
	}}
}

func routeFor(routes []tg.Route, endpoint string) tele.HandlerFunc {
	for _, r := range routes {
		if r.Endpoint == endpoint {
			return r.Handler
		}
	}
	return nil
}

func TestMessageRoutesPreferActiveConversation(t *testing.T) {
	bot := offlineBot(t)
	fsm := &fakeFSM{active: true}
	var fallbackCalls int
	reg := tg.NewRegistry()
	reg.SetTextFallback(func(tele.Context) error { fallbackCalls++; return nil })

	routes := MessageRoutes(fsm, reg, MessageOptions{})
	h := routeFor(routes, tele.OnText)
	require.NotNil(t, h)

	require.NoError(t, h(bot.NewContext(textUpdate("MyROM"))))
	assert.Equal(t, 1, fsm.handled)
	assert.Zero(t, fallbackCalls)

	fsm.active = false
	require.NoError(t, h(bot.NewContext(textUpdate("hello"))))
	assert.Equal(t, 1, fsm.handled)
	assert.Equal(t, 1, fallbackCalls)
}

func TestMessageRoutesLookupAliases(t *testing.T) {
	bot := offlineBot(t)
	var called bool
	reg := tg.NewRegistry()
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     func(tele.Context) error { called = true; return nil },
		Description: "Cancel",
		Aliases:     []string{"stop"},
	})

	h := routeFor(MessageRoutes(nil, reg, MessageOptions{}), tele.OnText)
	require.NoError(t, h(bot.NewContext(textUpdate("stop"))))
	assert.True(t, called)
}

func TestPhotoOutsideConversationUsesFallback(t *testing.T) {
	bot := offlineBot(t)
	var unexpected int
	routes := MessageRoutes(&fakeFSM{}, nil, MessageOptions{
		UnknownPhoto: func(tele.Context) error { unexpected++; return nil },
	})
	h := routeFor(routes, tele.OnPhoto)
	require.NoError(t, h(bot.NewContext(textUpdate(""))))
	assert.Equal(t, 1, unexpected)
}

func TestCallbackRouteDispatchesByUnique(t *testing.T) {
	bot := offlineBot(t)
	reg := tg.NewRegistry()
	var got string
	require.NoError(t, reg.RegisterCallback("post_publish", func(tele.Context) error { got = "publish"; return nil }))

	route := CallbackRoute(reg, CallbackOptions{NotFound: func(tele.Context) error { got = "missing"; return nil }})
	upd := tele.Update{ID: 2, Callback: &tele.Callback{ID: "cb", Data: "\fpost_publish|", Sender: &tele.User{ID: 7}}}
	require.NoError(t, route.Handler(bot.NewContext(upd)))
	assert.Equal(t, "publish", got)

	upd.Callback.Data = "\fother|"
	require.NoError(t, route.Handler(bot.NewContext(upd)))
	assert.Equal(t, "missing", got)
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "send failed" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestDeriveErrorCode(t *testing.T) {
	assert.Equal(t, "", deriveErrorCode(nil))
	assert.Equal(t, "SEND_FAILED", deriveErrorCode(codedErr{}))
	assert.Equal(t, "PLAINERR", deriveErrorCode(fmt.Errorf("send: %w", &plainErr{})))
	assert.Equal(t, "PLAINERR", deriveErrorCode(&plainErr{}))
}

func TestCommandRoutesIncludeAliases(t *testing.T) {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/cancel", commands.Command{Handler: func(tele.Context) error { return nil }, Description: "Cancel", Aliases: []string{"stop"}})
	routes := CommandRoutes(reg)
	require.Len(t, routes, 2)
	assert.Equal(t, "/cancel", routes[0].Endpoint)
	assert.Equal(t, "/stop", routes[1].Endpoint)
}
