package flow

import (
	"github.com/m3rciful/rompostbot/bot/chat"
	"github.com/m3rciful/rompostbot/core/telegram/state"
)

// EventKind is the shape of an inbound update.
type EventKind int

const (
	EventText EventKind = iota
	EventPhoto
	EventCallback
)

// Callback keys carried by the confirmation buttons.
const (
	CallbackPublish = "post_publish"
	CallbackCancel  = "post_cancel"
)

// Event is an inbound update normalised at the transport boundary.
type Event struct {
	Key     state.Key
	Kind    EventKind
	Command Command
	Text    string
	PhotoID string

	Callback   string
	CallbackID string
	// Message is the message a callback button belongs to.
	Message chat.MessageRef
}

// TextEvent builds a text event, classifying slash commands.
func TextEvent(key state.Key, text string) Event {
	return Event{Key: key, Kind: EventText, Command: ParseCommand(text), Text: text}
}

// PhotoEvent builds a photo event for the largest size's file id.
func PhotoEvent(key state.Key, fileID string) Event {
	return Event{Key: key, Kind: EventPhoto, PhotoID: fileID}
}

// CallbackEvent builds a button-press event.
func CallbackEvent(key state.Key, callbackID, data string, msg chat.MessageRef) Event {
	return Event{Key: key, Kind: EventCallback, Callback: data, CallbackID: callbackID, Message: msg}
}

func (e Event) isText() bool {
	return e.Kind == EventText && e.Command == CommandNone
}
