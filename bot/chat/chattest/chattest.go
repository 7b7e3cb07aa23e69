// Package chattest provides an in-memory chat.Client that records traffic.
package chattest

import (
	"context"
	"errors"
	"sync"

	"github.com/m3rciful/rompostbot/bot/chat"
)

// ErrInjected is a ready-made transport failure for tests.
var ErrInjected = errors.New("chattest: injected failure")

// Kind labels a recorded call.
type Kind string

const (
	KindText   Kind = "text"
	KindPhoto  Kind = "photo"
	KindEdit   Kind = "edit"
	KindAnswer Kind = "answer"
)

// Call is one recorded outbound operation.
type Call struct {
	Kind       Kind
	Ref        chat.MessageRef
	Text       string
	FileID     string
	Opts       chat.SendOptions
	CallbackID string
}

// Client is a recording chat.Client. Message ids increase per client.
type Client struct {
	mu     sync.Mutex
	calls  []Call
	nextID int
	roles  map[int64]chat.Role
	fail   map[int64]error

	// RoleErr, when set, is returned by MemberRole.
	RoleErr error
	// EditErr, when set, is returned by EditText.
	EditErr error
}

var _ chat.Client = (*Client)(nil)

// New returns an empty recording client.
func New() *Client {
	return &Client{
		roles: make(map[int64]chat.Role),
		fail:  make(map[int64]error),
	}
}

// SetRole sets the membership role reported for userID in any chat.
func (c *Client) SetRole(userID int64, role chat.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[userID] = role
}

// FailChat makes sends to chatID return err; nil clears it.
func (c *Client) FailChat(chatID int64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.fail, chatID)
		return
	}
	c.fail[chatID] = err
}

func (c *Client) send(chatID int64, call Call) (chat.MessageRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail[chatID]; err != nil {
		return chat.MessageRef{}, err
	}
	c.nextID++
	call.Ref = chat.MessageRef{ChatID: chatID, MessageID: c.nextID}
	c.calls = append(c.calls, call)
	return call.Ref, nil
}

// SendText records a text message.
func (c *Client) SendText(_ context.Context, chatID int64, text string, opts chat.SendOptions) (chat.MessageRef, error) {
	return c.send(chatID, Call{Kind: KindText, Text: text, Opts: opts})
}

// SendPhoto records a photo message.
func (c *Client) SendPhoto(_ context.Context, chatID int64, fileID, caption string, opts chat.SendOptions) (chat.MessageRef, error) {
	return c.send(chatID, Call{Kind: KindPhoto, FileID: fileID, Text: caption, Opts: opts})
}

// EditText records an edit.
func (c *Client) EditText(_ context.Context, ref chat.MessageRef, text string, opts chat.SendOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.EditErr != nil {
		return c.EditErr
	}
	c.calls = append(c.calls, Call{Kind: KindEdit, Ref: ref, Text: text, Opts: opts})
	return nil
}

// AnswerCallback records a callback acknowledgement.
func (c *Client) AnswerCallback(_ context.Context, callbackID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Kind: KindAnswer, CallbackID: callbackID, Text: text})
	return nil
}

// MemberRole returns the role set with SetRole, or chat.RoleMember.
func (c *Client) MemberRole(_ context.Context, _, userID int64) (chat.Role, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.RoleErr != nil {
		return "", c.RoleErr
	}
	if r, ok := c.roles[userID]; ok {
		return r, nil
	}
	return chat.RoleMember, nil
}

// Calls returns a copy of every recorded call.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// To returns the text and photo messages sent to chatID.
func (c *Client) To(chatID int64) []Call {
	var out []Call
	for _, call := range c.Calls() {
		if (call.Kind == KindText || call.Kind == KindPhoto) && call.Ref.ChatID == chatID {
			out = append(out, call)
		}
	}
	return out
}

// Last returns the most recent call of kind, if any.
func (c *Client) Last(kind Kind) (Call, bool) {
	calls := c.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Kind == kind {
			return calls[i], true
		}
	}
	return Call{}, false
}

// Reset forgets recorded calls.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}
