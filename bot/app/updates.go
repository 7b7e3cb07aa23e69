package app

import (
	"github.com/m3rciful/rompostbot/bot/chat"
	"github.com/m3rciful/rompostbot/bot/flow"
	"github.com/m3rciful/rompostbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/rompostbot/core/telegram/helpers"
	"github.com/m3rciful/rompostbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// updates translates telebot updates into flow events.
type updates struct {
	engine *flow.Engine
}

func keyOf(c tele.Context) state.Key {
	return state.Key{UserID: tghelpers.SenderID(c), ChatID: tghelpers.ChatID(c)}
}

// InProgress reports whether the update author has a live conversation here.
func (u updates) InProgress(c tele.Context) bool {
	return u.engine.InProgress(keyOf(c))
}

// HandleUpdate feeds the update to the engine. Updates carrying neither
// text, photo nor callback are dropped.
func (u updates) HandleUpdate(c tele.Context) error {
	ev, ok := eventOf(c)
	if !ok {
		return nil
	}
	return u.engine.Handle(tghelpers.BuildContext(c), ev)
}

func eventOf(c tele.Context) (flow.Event, bool) {
	key := keyOf(c)
	if key.UserID == 0 {
		return flow.Event{}, false
	}

	if cb := c.Callback(); cb != nil {
		unique, _ := callbacks.ParseCallbackData(cb)
		var ref chat.MessageRef
		if m := cb.Message; m != nil && m.Chat != nil {
			ref = chat.MessageRef{ChatID: m.Chat.ID, MessageID: m.ID}
		}
		return flow.CallbackEvent(key, cb.ID, unique, ref), true
	}

	msg := c.Message()
	switch {
	case msg == nil:
		return flow.Event{}, false
	case msg.Photo != nil:
		// Telegram sends several sizes; telebot keeps the largest.
		return flow.PhotoEvent(key, msg.Photo.FileID), true
	case msg.Text != "":
		return flow.TextEvent(key, msg.Text), true
	}
	return flow.Event{}, false
}
