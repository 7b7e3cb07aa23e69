package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/m3rciful/rompostbot/bot/chat"
	"github.com/m3rciful/rompostbot/bot/post"
	"github.com/m3rciful/rompostbot/bot/publish"
	"github.com/m3rciful/rompostbot/core/telegram/format"
	"github.com/m3rciful/rompostbot/core/telegram/state"
)

// Conversation steps in order, followed by the terminal states.
const (
	StepBanner          state.State = "banner"
	StepTags            state.State = "tags"
	StepTitle           state.State = "title"
	StepDevice          state.State = "device"
	StepMaintainer      state.State = "maintainer"
	StepScreenshots     state.State = "screenshots"
	StepChangelog       state.State = "changelog"
	StepDeviceChangelog state.State = "device_changelog"
	StepDownloads       state.State = "downloads"
	StepDonate          state.State = "donate"
	StepReadme          state.State = "readme"
	StepNotes           state.State = "notes"
	StepConfirm         state.State = "confirm"

	StepPublished state.State = "published"
	StepCancelled state.State = "cancelled"
)

// Steps lists the thirteen live steps in order.
var Steps = []state.State{
	StepBanner, StepTags, StepTitle, StepDevice, StepMaintainer,
	StepScreenshots, StepChangelog, StepDeviceChangelog, StepDownloads,
	StepDonate, StepReadme, StepNotes, StepConfirm,
}

func terminal(st state.State) bool {
	return st == StepPublished || st == StepCancelled
}

// conversation is the stored value for one (user, chat) key.
type conversation struct {
	session *post.Session
	preview chat.MessageRef
}

// reply is what a step answers with.
type reply struct {
	text string
	opts chat.SendOptions
}

// stepFunc handles ev at one step and returns the next step. An error
// leaves the conversation at the current step.
type stepFunc func(ctx context.Context, conv *conversation, ev Event) (state.State, reply, error)

func say(text string) reply { return reply{text: text} }

func (e *Engine) transitions() map[state.State]stepFunc {
	return map[state.State]stepFunc{
		StepBanner:          e.banner,
		StepTags:            e.tags,
		StepTitle:           required(StepTitle, StepDevice, promptDevice, errTitle, func(s *post.Session, v string) { s.Title = v }),
		StepDevice:          required(StepDevice, StepMaintainer, promptMaintainer, errDevice, func(s *post.Session, v string) { s.Device = v }),
		StepMaintainer:      required(StepMaintainer, StepScreenshots, promptScreenshots, errMaintainer, func(s *post.Session, v string) { s.Maintainer = v }),
		StepScreenshots:     e.screenshots,
		StepChangelog:       e.linkOrMirror(StepChangelog, StepDeviceChangelog, headingChangelog, promptDevChangelog, errChangelog, func(s *post.Session, v string) { s.Changelog = v }),
		StepDeviceChangelog: e.linkOrMirror(StepDeviceChangelog, StepDownloads, headingDeviceChangelog, promptDownloads, errDevChangelog, func(s *post.Session, v string) { s.DeviceChangelog = v }),
		StepDownloads:       e.downloads,
		StepDonate:          e.donate,
		StepReadme:          e.linkOrMirror(StepReadme, StepNotes, headingReadme, promptNotes, errReadme, func(s *post.Session, v string) { s.Readme = v }),
		StepNotes:           e.notes,
		StepConfirm:         e.confirm,
	}
}

func (e *Engine) banner(_ context.Context, conv *conversation, ev Event) (state.State, reply, error) {
	switch {
	case ev.Kind == EventPhoto:
		conv.session.Banner = ev.PhotoID
	case ev.Command == CommandSkip:
	default:
		return StepBanner, say(errBanner), nil
	}
	return StepTags, say(promptTags), nil
}

func (e *Engine) tags(_ context.Context, conv *conversation, ev Event) (state.State, reply, error) {
	switch {
	case ev.isText():
		conv.session.Tags = post.ParseTags(ev.Text)
	case ev.Command == CommandSkip:
	default:
		return StepTags, say(errTags), nil
	}
	return StepTitle, say(promptTitle), nil
}

// required builds a step for a mandatory free-text field.
func required(cur, next state.State, prompt, reject string, set func(*post.Session, string)) stepFunc {
	return func(_ context.Context, conv *conversation, ev Event) (state.State, reply, error) {
		v := strings.TrimSpace(ev.Text)
		if !ev.isText() || v == "" {
			return cur, say(reject), nil
		}
		set(conv.session, v)
		return next, say(prompt), nil
	}
}

func (e *Engine) screenshots(ctx context.Context, conv *conversation, ev Event) (state.State, reply, error) {
	s := conv.session
	switch {
	case ev.Kind == EventPhoto:
		link, err := e.mirror.PostPhoto(ctx, headingScreenshots, ev.PhotoID)
		if err != nil {
			return StepScreenshots, reply{}, err
		}
		s.AddScreenshot(link)
		return StepScreenshots, say(msgScreenshotSaved), nil
	case ev.Command == CommandDone:
		if len(s.Screenshots) == 0 {
			return StepScreenshots, say(errNoScreenshot), nil
		}
		return StepChangelog, say(promptChangelog), nil
	case ev.isText() && post.IsURL(strings.TrimSpace(ev.Text)):
		s.AddScreenshot(strings.TrimSpace(ev.Text))
		return StepScreenshots, say(msgScreenshotURL), nil
	}
	return StepScreenshots, say(errScreenshots), nil
}

// linkOrMirror builds a step that stores a URL as given and mirrors any
// other text to the discussion group, storing the resulting link.
func (e *Engine) linkOrMirror(cur, next state.State, heading, prompt, reject string, set func(*post.Session, string)) stepFunc {
	return func(ctx context.Context, conv *conversation, ev Event) (state.State, reply, error) {
		text := strings.TrimSpace(ev.Text)
		switch {
		case ev.Command == CommandSkip:
		case !ev.isText() || text == "":
			return cur, say(reject), nil
		case post.IsURL(text):
			set(conv.session, text)
		default:
			link, err := e.mirror.PostText(ctx, heading, text)
			if err != nil {
				return cur, reply{}, err
			}
			set(conv.session, link)
		}
		return next, say(prompt), nil
	}
}

func (e *Engine) downloads(_ context.Context, conv *conversation, ev Event) (state.State, reply, error) {
	s := conv.session
	switch {
	case ev.Command == CommandDone:
		if len(s.Downloads) == 0 {
			return StepDownloads, say(errNoDownload), nil
		}
		return StepDonate, say(promptDonate), nil
	case ev.isText():
		link, err := post.ParseDownloadLink(ev.Text)
		if err != nil {
			return StepDownloads, say(errDownload), nil
		}
		s.SetDownload(link)
		return StepDownloads, say(fmt.Sprintf(msgDownloadSaved, format.EscapeHTML(link.Variant))), nil
	}
	return StepDownloads, say(errDownload), nil
}

func (e *Engine) donate(_ context.Context, conv *conversation, ev Event) (state.State, reply, error) {
	text := strings.TrimSpace(ev.Text)
	switch {
	case ev.Command == CommandSkip:
	case ev.isText() && post.IsURL(text):
		conv.session.Donate = text
	default:
		return StepDonate, say(errDonate), nil
	}
	return StepReadme, say(promptReadme), nil
}

// notes stores the notes and sends the preview with the confirm buttons.
func (e *Engine) notes(ctx context.Context, conv *conversation, ev Event) (state.State, reply, error) {
	switch {
	case ev.Command == CommandSkip:
	case ev.isText() && strings.TrimSpace(ev.Text) != "":
		conv.session.Notes = strings.TrimSpace(ev.Text)
	default:
		return StepNotes, say(errNotes), nil
	}

	ref, err := e.client.SendText(ctx, ev.Key.ChatID, e.captions.Build(conv.session), chat.SendOptions{
		DisablePreview: true,
		Buttons: [][]chat.Button{{
			{Text: "✅ Publish", Unique: CallbackPublish},
			{Text: "❌ Cancel", Unique: CallbackCancel},
		}},
	})
	if err != nil {
		return StepNotes, reply{}, fmt.Errorf("flow: send preview: %w", err)
	}
	conv.preview = ref
	return StepConfirm, reply{}, nil
}

func (e *Engine) confirm(ctx context.Context, conv *conversation, ev Event) (state.State, reply, error) {
	if ev.Kind != EventCallback {
		return StepConfirm, say(errConfirm), nil
	}
	if !ev.Message.IsZero() && ev.Message != conv.preview {
		return StepConfirm, reply{}, e.client.AnswerCallback(ctx, ev.CallbackID, msgStaleBtn)
	}
	if err := e.client.AnswerCallback(ctx, ev.CallbackID, ""); err != nil {
		return StepConfirm, reply{}, err
	}

	switch ev.Callback {
	case CallbackPublish:
		req := publish.Request{Session: conv.session, UserID: ev.Key.UserID, ChatID: ev.Key.ChatID}
		if _, err := e.publisher.Publish(ctx, req); err != nil {
			return StepConfirm, reply{}, err
		}
		e.closePreview(ctx, conv, msgPublished)
		return StepPublished, reply{}, nil
	case CallbackCancel:
		e.closePreview(ctx, conv, msgCancelled)
		return StepCancelled, reply{}, nil
	}
	return StepConfirm, say(errConfirm), nil
}
