package chat

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/m3rciful/rompostbot/core/telegram/keyboard"
	"github.com/m3rciful/rompostbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Telebot implements Client over a *tele.Bot. The bot is created by the
// runtime, so it may be attached after construction.
type Telebot struct {
	mu  sync.RWMutex
	bot *tele.Bot
}

// NewTelebot returns a client bound to bot, which may be nil until Attach.
func NewTelebot(bot *tele.Bot) *Telebot {
	return &Telebot{bot: bot}
}

// Attach binds the running bot.
func (t *Telebot) Attach(bot *tele.Bot) {
	t.mu.Lock()
	t.bot = bot
	t.mu.Unlock()
}

func (t *Telebot) api() (*tele.Bot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.bot == nil {
		return nil, ErrNotAttached
	}
	return t.bot, nil
}

// SendText sends an HTML message.
func (t *Telebot) SendText(ctx context.Context, chatID int64, text string, opts SendOptions) (MessageRef, error) {
	bot, err := t.api()
	if err != nil {
		return MessageRef{}, err
	}
	msg, err := bot.Send(tele.ChatID(chatID), text, sendOptions(opts))
	if err != nil {
		return MessageRef{}, fmt.Errorf("chat: send text to %d: %w", chatID, err)
	}
	middleware.RecordMessage(ctx, len(opts.Buttons) > 0)
	return refOf(msg, chatID), nil
}

// SendPhoto sends a photo by Telegram file id with an HTML caption.
func (t *Telebot) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, opts SendOptions) (MessageRef, error) {
	bot, err := t.api()
	if err != nil {
		return MessageRef{}, err
	}
	photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
	msg, err := bot.Send(tele.ChatID(chatID), photo, sendOptions(opts))
	if err != nil {
		return MessageRef{}, fmt.Errorf("chat: send photo to %d: %w", chatID, err)
	}
	middleware.RecordMessage(ctx, len(opts.Buttons) > 0)
	return refOf(msg, chatID), nil
}

// EditText replaces the text of a sent message. Buttons not repeated in
// opts are removed.
func (t *Telebot) EditText(ctx context.Context, ref MessageRef, text string, opts SendOptions) error {
	bot, err := t.api()
	if err != nil {
		return err
	}
	stored := tele.StoredMessage{MessageID: strconv.Itoa(ref.MessageID), ChatID: ref.ChatID}
	if _, err := bot.Edit(stored, text, sendOptions(opts)); err != nil {
		return fmt.Errorf("chat: edit message %d in %d: %w", ref.MessageID, ref.ChatID, err)
	}
	middleware.RecordMessage(ctx, len(opts.Buttons) > 0)
	return nil
}

// AnswerCallback acknowledges a button press, optionally with a toast.
func (t *Telebot) AnswerCallback(_ context.Context, callbackID, text string) error {
	bot, err := t.api()
	if err != nil {
		return err
	}
	if err := bot.Respond(&tele.Callback{ID: callbackID}, &tele.CallbackResponse{Text: text}); err != nil {
		return fmt.Errorf("chat: answer callback: %w", err)
	}
	return nil
}

// MemberRole looks up the user's status in chatID.
func (t *Telebot) MemberRole(_ context.Context, chatID, userID int64) (Role, error) {
	bot, err := t.api()
	if err != nil {
		return "", err
	}
	member, err := bot.ChatMemberOf(&tele.Chat{ID: chatID}, &tele.User{ID: userID})
	if err != nil {
		return "", fmt.Errorf("chat: member %d of %d: %w", userID, chatID, err)
	}
	return Role(member.Role), nil
}

func sendOptions(opts SendOptions) *tele.SendOptions {
	out := &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableNotification:   opts.Silent,
		DisableWebPagePreview: opts.DisablePreview,
	}
	switch {
	case len(opts.Buttons) > 0:
		rows := make([][]keyboard.InlineBtn, 0, len(opts.Buttons))
		for _, row := range opts.Buttons {
			r := make([]keyboard.InlineBtn, 0, len(row))
			for _, b := range row {
				r = append(r, keyboard.InlineBtn{Text: b.Text, Unique: b.Unique})
			}
			rows = append(rows, r)
		}
		out.ReplyMarkup = keyboard.InlineButtonsRows(rows...)
	case opts.RemoveKeyboard:
		out.ReplyMarkup = keyboard.RemoveKeyboard()
	}
	return out
}

func refOf(msg *tele.Message, fallbackChat int64) MessageRef {
	if msg == nil {
		return MessageRef{ChatID: fallbackChat}
	}
	ref := MessageRef{ChatID: fallbackChat, MessageID: msg.ID}
	if msg.Chat != nil {
		ref.ChatID = msg.Chat.ID
	}
	return ref
}
