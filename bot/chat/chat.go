// Package chat is the boundary between the conversation logic and the
// Telegram transport. All text is sent in HTML parse mode.
package chat

import (
	"context"
	"errors"
)

// ErrNotAttached is returned by Telebot before a bot is attached.
var ErrNotAttached = errors.New("chat: bot not attached")

// MessageRef identifies a sent message.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// IsZero reports whether r refers to no message.
func (r MessageRef) IsZero() bool {
	return r.MessageID == 0
}

// Button is an inline button; Unique is the callback key delivered on press.
type Button struct {
	Text   string
	Unique string
}

// SendOptions tunes a single outbound message.
type SendOptions struct {
	Silent         bool
	DisablePreview bool
	RemoveKeyboard bool
	Buttons        [][]Button
}

// Role is a user's membership status in a chat.
type Role string

const (
	RoleCreator       Role = "creator"
	RoleAdministrator Role = "administrator"
	RoleMember        Role = "member"
	RoleRestricted    Role = "restricted"
	RoleLeft          Role = "left"
	RoleKicked        Role = "kicked"
)

// IsAdmin reports whether the role may manage the chat.
func (r Role) IsAdmin() bool {
	return r == RoleCreator || r == RoleAdministrator
}

// Client is the set of transport primitives the bot relies on.
type Client interface {
	SendText(ctx context.Context, chatID int64, text string, opts SendOptions) (MessageRef, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, opts SendOptions) (MessageRef, error)
	EditText(ctx context.Context, ref MessageRef, text string, opts SendOptions) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	MemberRole(ctx context.Context, chatID, userID int64) (Role, error)
}
