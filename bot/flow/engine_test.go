package flow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/rompostbot/bot/chat"
	"github.com/m3rciful/rompostbot/bot/chat/chattest"
	"github.com/m3rciful/rompostbot/bot/mirror"
	"github.com/m3rciful/rompostbot/bot/post"
	"github.com/m3rciful/rompostbot/bot/publish"
	"github.com/m3rciful/rompostbot/core/telegram/state"
)

const (
	channelID    = int64(-1001111111111)
	discussionID = int64(-1002222222222)
	adminID      = int64(10)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	t      *testing.T
	client *chattest.Client
	clock  *fakeClock
	engine *Engine
	key    state.Key
	cbSeq  int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client := chattest.New()
	client.SetRole(adminID, chat.RoleAdministrator)
	clock := &fakeClock{now: time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)}
	captions := post.NewCaptionBuilder(post.Branding{})
	engine := New(Options{
		Client: client,
		Mirror: mirror.New(client, discussionID, ""),
		Publisher: publish.New(publish.Options{
			Client:    client,
			ChannelID: channelID,
			Captions:  captions,
			Now:       clock.Now,
		}),
		Captions:    captions,
		ChannelID:   channelID,
		Credit:      Credit{Name: "Shiva Karthik", URL: "https://github.com/madashivakarthikgoud"},
		IdleTimeout: 30 * time.Minute,
		Now:         clock.Now,
	})
	return &harness{t: t, client: client, clock: clock, engine: engine, key: state.Key{UserID: adminID, ChatID: adminID}}
}

func (h *harness) handle(ev Event) {
	h.t.Helper()
	require.NoError(h.t, h.engine.Handle(context.Background(), ev))
}

func (h *harness) text(s string) {
	h.t.Helper()
	h.handle(TextEvent(h.key, s))
}

func (h *harness) photo(fileID string) {
	h.t.Helper()
	h.handle(PhotoEvent(h.key, fileID))
}

func (h *harness) pressEvent(data string) Event {
	h.cbSeq++
	return CallbackEvent(h.key, fmt.Sprintf("cb-%d", h.cbSeq), data, h.previewRef())
}

func (h *harness) press(data string) {
	h.t.Helper()
	h.handle(h.pressEvent(data))
}

func (h *harness) previewRef() chat.MessageRef {
	calls := h.client.To(h.key.ChatID)
	for i := len(calls) - 1; i >= 0; i-- {
		if len(calls[i].Opts.Buttons) > 0 {
			return calls[i].Ref
		}
	}
	return chat.MessageRef{}
}

func (h *harness) lastReply() string {
	h.t.Helper()
	calls := h.client.To(h.key.ChatID)
	require.NotEmpty(h.t, calls)
	return calls[len(calls)-1].Text
}

func (h *harness) session() *post.Session {
	h.t.Helper()
	entry, ok := h.engine.sessions.Get(h.key)
	require.True(h.t, ok, "no live session")
	return entry.Data.session
}

// happyPath reaches confirm with the minimal valid post.
var happyPath = []string{
	"/start",
	"/skip", // banner
	"/skip", // tags
	"MyROM",
	"Pixel",
	"@dev",
	"https://img.example/1.png",
	"/done",
	"/skip", // changelog
	"/skip", // device changelog
	"arm64|https://dl.example/x",
	"/done",
	"/skip", // donate
	"/skip", // readme
	"/skip", // notes
}

// driveTo feeds happyPath inputs until the conversation sits at target.
func (h *harness) driveTo(target state.State) {
	h.t.Helper()
	h.text("/start")
	for _, in := range happyPath[1:] {
		if h.engine.Step(h.key) == target {
			return
		}
		h.text(in)
	}
	require.Equal(h.t, target, h.engine.Step(h.key))
}

func TestEndToEndPlainTextPost(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepConfirm)

	preview, ok := h.client.Last(chattest.KindText)
	require.True(t, ok)
	require.Len(t, preview.Opts.Buttons, 1)
	assert.True(t, preview.Opts.DisablePreview)
	assert.Equal(t, CallbackPublish, preview.Opts.Buttons[0][0].Unique)
	assert.Equal(t, CallbackCancel, preview.Opts.Buttons[0][1].Unique)

	h.press(CallbackPublish)

	sent := h.client.To(channelID)
	require.Len(t, sent, 1)
	assert.Equal(t, chattest.KindText, sent[0].Kind, "no banner means a plain message")
	lines := strings.Split(sent[0].Text, "\n")
	assert.Contains(t, lines, "<b>MyROM</b>")
	assert.Contains(t, lines, "for Pixel is now available!")
	assert.Contains(t, lines, "By @dev")
	assert.Contains(t, lines, `▫️ Download: <a href="https://dl.example/x">arm64</a>`)
	assert.Equal(t, "Updated - 14/10/2026", lines[len(lines)-1])
	assert.Equal(t, preview.Text, sent[0].Text, "preview and post render the same caption")

	edit, ok := h.client.Last(chattest.KindEdit)
	require.True(t, ok)
	assert.Equal(t, msgPublished, edit.Text)
	assert.Equal(t, preview.Ref, edit.Ref)
	assert.Empty(t, edit.Opts.Buttons)

	answer, ok := h.client.Last(chattest.KindAnswer)
	require.True(t, ok)
	assert.Equal(t, "cb-1", answer.CallbackID)

	assert.False(t, h.engine.InProgress(h.key))
	assert.Empty(t, h.client.To(discussionID), "URL inputs never mirror")
}

func TestGreetingAndPrompts(t *testing.T) {
	h := newHarness(t)
	h.text("/start")

	greet, ok := h.client.Last(chattest.KindText)
	require.True(t, ok)
	assert.True(t, greet.Opts.RemoveKeyboard)
	assert.Equal(t, "🤖 <b>ROM Post Bot</b> by <b>Shiva Karthik</b>\nGitHub: https://github.com/madashivakarthikgoud\n\n"+promptBanner, greet.Text)
	assert.Equal(t, StepBanner, h.engine.Step(h.key))

	h.text("/skip")
	assert.Equal(t, promptTags, h.lastReply())
	h.text("#rom #a14")
	assert.Equal(t, promptTitle, h.lastReply())
	assert.Equal(t, []string{"#rom", "#a14"}, h.session().Tags)
}

func TestCancelFromEveryStep(t *testing.T) {
	require.Len(t, Steps, 13)
	for _, step := range Steps {
		t.Run(string(step), func(t *testing.T) {
			h := newHarness(t)
			h.driveTo(step)

			h.text("/cancel")

			assert.False(t, h.engine.InProgress(h.key))
			assert.Empty(t, h.client.To(channelID))
			if step == StepConfirm {
				edit, ok := h.client.Last(chattest.KindEdit)
				require.True(t, ok)
				assert.Equal(t, msgCancelled, edit.Text)
				assert.Equal(t, h.previewRef(), edit.Ref)
				return
			}
			assert.Equal(t, msgCancelled, h.lastReply())
		})
	}
}

func TestCancelButton(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepConfirm)
	h.press(CallbackCancel)

	edit, ok := h.client.Last(chattest.KindEdit)
	require.True(t, ok)
	assert.Equal(t, msgCancelled, edit.Text)
	assert.False(t, h.engine.InProgress(h.key))
	assert.Empty(t, h.client.To(channelID))
}

func TestCancelWithoutSession(t *testing.T) {
	h := newHarness(t)
	h.text("/cancel")
	assert.Equal(t, msgNoSession, h.lastReply())
}

func TestNonAdminCannotStart(t *testing.T) {
	h := newHarness(t)
	h.key = state.Key{UserID: 99, ChatID: 99}
	h.text("/start")

	calls := h.client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, msgNotAdmin, calls[0].Text)
	assert.False(t, h.engine.InProgress(h.key))

	h.text("/skip")
	assert.Equal(t, msgNoSession, h.lastReply())
}

func TestCreatorCanStart(t *testing.T) {
	h := newHarness(t)
	h.client.SetRole(adminID, chat.RoleCreator)
	h.text("/start")
	assert.Equal(t, StepBanner, h.engine.Step(h.key))
}

func TestRoleLookupFailureCreatesNothing(t *testing.T) {
	h := newHarness(t)
	h.client.RoleErr = chattest.ErrInjected
	err := h.engine.Handle(context.Background(), TextEvent(h.key, "/start"))
	require.ErrorIs(t, err, chattest.ErrInjected)
	assert.False(t, h.engine.InProgress(h.key))
	assert.Empty(t, h.client.Calls())
}

func TestStartRestartsSession(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepScreenshots)
	oldID := h.session().ID

	h.text("/start")
	assert.Equal(t, StepBanner, h.engine.Step(h.key))
	assert.NotEqual(t, oldID, h.session().ID)
	assert.Empty(t, h.session().Title)
}

func TestDoneRequiresCollectedItems(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepScreenshots)
	h.text("/done")
	assert.Equal(t, errNoScreenshot, h.lastReply())
	assert.Equal(t, StepScreenshots, h.engine.Step(h.key))

	h.text("not a url")
	assert.Equal(t, errScreenshots, h.lastReply())
	h.text("https://img.example/1.png")
	assert.Equal(t, msgScreenshotURL, h.lastReply())
	h.text("https://img.example/2.png")
	assert.Equal(t, StepScreenshots, h.engine.Step(h.key), "URLs keep collecting")
	h.text("/done")
	assert.Equal(t, StepChangelog, h.engine.Step(h.key))
	assert.Len(t, h.session().Screenshots, 2)

	h.text("/skip")
	h.text("/skip")
	require.Equal(t, StepDownloads, h.engine.Step(h.key))
	h.text("/done")
	assert.Equal(t, errNoDownload, h.lastReply())
	assert.Equal(t, StepDownloads, h.engine.Step(h.key))
}

func TestScreenshotPhotoIsMirrored(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepScreenshots)
	h.photo("shot-1")

	mirrored := h.client.To(discussionID)
	require.Len(t, mirrored, 1)
	assert.Equal(t, chattest.KindPhoto, mirrored[0].Kind)
	assert.Equal(t, "<b>Screenshots</b>", mirrored[0].Text)
	assert.Equal(t, []string{mirror.DeepLink(mirror.DefaultHost, discussionID, mirrored[0].Ref.MessageID)}, h.session().Screenshots)
	assert.Equal(t, msgScreenshotSaved, h.lastReply())
}

func TestScreenshotMirrorFailureKeepsStep(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepScreenshots)
	h.client.FailChat(discussionID, chattest.ErrInjected)

	err := h.engine.Handle(context.Background(), PhotoEvent(h.key, "shot-1"))
	require.ErrorIs(t, err, chattest.ErrInjected)
	assert.Equal(t, StepScreenshots, h.engine.Step(h.key))
	assert.Empty(t, h.session().Screenshots)
	assert.Equal(t, "MyROM", h.session().Title, "collected answers survive")
}

func TestLinkStepsStoreURLsAndMirrorText(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepChangelog)

	h.text("https://t.me/rom/changelog")
	assert.Equal(t, "https://t.me/rom/changelog", h.session().Changelog)
	assert.Empty(t, h.client.To(discussionID))

	h.text("- Fixed <wifi>\n- Faster boot")
	mirrored := h.client.To(discussionID)
	require.Len(t, mirrored, 1)
	assert.Equal(t, "<b>Device Changelog</b>\n\n- Fixed &lt;wifi&gt;\n- Faster boot", mirrored[0].Text)
	assert.Equal(t, mirror.DeepLink(mirror.DefaultHost, discussionID, mirrored[0].Ref.MessageID), h.session().DeviceChangelog)
	assert.Equal(t, StepDownloads, h.engine.Step(h.key))

	h.text("arm64|https://dl.example/x")
	h.text("/done")
	h.text("/skip")
	require.Equal(t, StepReadme, h.engine.Step(h.key))
	h.text("Flash via recovery")
	require.Len(t, h.client.To(discussionID), 2)
	assert.True(t, strings.HasPrefix(h.client.To(discussionID)[1].Text, "<b>Readme</b>\n\n"))
	assert.Equal(t, StepNotes, h.engine.Step(h.key))
}

func TestLinkStepRejectsPhoto(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepChangelog)
	h.photo("img")
	assert.Equal(t, errChangelog, h.lastReply())
	assert.Equal(t, StepChangelog, h.engine.Step(h.key))
}

func TestRequiredFieldsRejectSkipAndPhotos(t *testing.T) {
	cases := []struct {
		step   state.State
		reject string
	}{
		{StepTitle, errTitle},
		{StepDevice, errDevice},
		{StepMaintainer, errMaintainer},
	}
	for _, tc := range cases {
		t.Run(string(tc.step), func(t *testing.T) {
			h := newHarness(t)
			h.driveTo(tc.step)
			h.text("/skip")
			assert.Equal(t, tc.reject, h.lastReply())
			h.photo("x")
			assert.Equal(t, tc.reject, h.lastReply())
			h.text("   ")
			assert.Equal(t, tc.reject, h.lastReply())
			assert.Equal(t, tc.step, h.engine.Step(h.key))
		})
	}
}

func TestBannerStepRejectsText(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepBanner)
	h.text("banner please")
	assert.Equal(t, errBanner, h.lastReply())
	assert.Equal(t, StepBanner, h.engine.Step(h.key))
}

func TestDownloadsParseAndReplace(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepDownloads)

	for _, bad := range []string{"Variant-only", "Variant|not-a-url"} {
		h.text(bad)
		assert.Equal(t, errDownload, h.lastReply())
	}
	h.text("Vanilla|https://dl.example/1")
	assert.Equal(t, "✅ Vanilla saved. More or /done?", h.lastReply())
	h.text("GApps|https://dl.example/2")
	h.text("Vanilla|https://dl.example/3")
	assert.Equal(t, []post.DownloadLink{
		{Variant: "Vanilla", URL: "https://dl.example/3"},
		{Variant: "GApps", URL: "https://dl.example/2"},
	}, h.session().Downloads)

	h.text("<b>|https://dl.example/4")
	assert.Equal(t, "✅ &lt;b&gt; saved. More or /done?", h.lastReply())
}

func TestDonateRejectsNonURL(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepDonate)
	h.text("paypal me please")
	assert.Equal(t, errDonate, h.lastReply())
	assert.Equal(t, StepDonate, h.engine.Step(h.key))

	h.text("https://paypal.me/dev")
	assert.Equal(t, "https://paypal.me/dev", h.session().Donate)
	assert.Equal(t, StepReadme, h.engine.Step(h.key))
}

func TestNotesAppearInPreview(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepNotes)
	h.text("Clean flash\nBackup first")

	preview, ok := h.client.Last(chattest.KindText)
	require.True(t, ok)
	assert.Contains(t, preview.Text, "📝 Notes:\n- Clean flash\n- Backup first\n")
	assert.Equal(t, StepConfirm, h.engine.Step(h.key))

	h.text("publish it")
	assert.Equal(t, errConfirm, h.lastReply())
}

func TestBannerPublishesAsPhoto(t *testing.T) {
	h := newHarness(t)
	h.text("/start")
	h.photo("banner-file")
	for _, in := range happyPath[2:] {
		h.text(in)
	}
	require.Equal(t, StepConfirm, h.engine.Step(h.key))
	h.press(CallbackPublish)

	sent := h.client.To(channelID)
	require.Len(t, sent, 1)
	assert.Equal(t, chattest.KindPhoto, sent[0].Kind)
	assert.Equal(t, "banner-file", sent[0].FileID)
	assert.Contains(t, sent[0].Text, "<b>MyROM</b>")
}

func TestPublishFailureKeepsConfirm(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepConfirm)
	h.client.FailChat(channelID, chattest.ErrInjected)

	err := h.engine.Handle(context.Background(), h.pressEvent(CallbackPublish))
	require.ErrorIs(t, err, chattest.ErrInjected)
	assert.Equal(t, StepConfirm, h.engine.Step(h.key))

	h.client.FailChat(channelID, nil)
	h.press(CallbackPublish)
	assert.Len(t, h.client.To(channelID), 1)
	assert.False(t, h.engine.InProgress(h.key))
}

func TestPublishSurvivesPreviewEditFailure(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepConfirm)
	h.client.EditErr = chattest.ErrInjected

	h.press(CallbackPublish)
	assert.Len(t, h.client.To(channelID), 1)
	assert.False(t, h.engine.InProgress(h.key), "a published post is never offered again")
}

func TestStaleButtons(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepConfirm)
	stale := h.pressEvent(CallbackPublish)
	stale.Message.MessageID++
	h.handle(stale)

	answer, ok := h.client.Last(chattest.KindAnswer)
	require.True(t, ok)
	assert.Equal(t, msgStaleBtn, answer.Text)
	assert.Equal(t, StepConfirm, h.engine.Step(h.key))
	assert.Empty(t, h.client.To(channelID))

	old := h.pressEvent(CallbackPublish)
	h.text("/start")
	h.handle(old)
	answer, _ = h.client.Last(chattest.KindAnswer)
	assert.Equal(t, msgStaleBtn, answer.Text)
	assert.Equal(t, StepBanner, h.engine.Step(h.key))
}

func TestCallbackWithoutSession(t *testing.T) {
	h := newHarness(t)
	h.handle(CallbackEvent(h.key, "cb-x", CallbackPublish, chat.MessageRef{ChatID: adminID, MessageID: 3}))
	answer, ok := h.client.Last(chattest.KindAnswer)
	require.True(t, ok)
	assert.Equal(t, "cb-x", answer.CallbackID)
	assert.Empty(t, h.client.To(channelID))
}

func TestHelp(t *testing.T) {
	h := newHarness(t)
	h.text("/help")
	assert.Equal(t, helpText, h.lastReply())

	h.driveTo(StepTitle)
	h.text("/help")
	assert.Equal(t, StepTitle, h.engine.Step(h.key), "help does not move the conversation")
}

func TestIdleTimeoutExpiresSession(t *testing.T) {
	h := newHarness(t)
	h.driveTo(StepDevice)

	h.clock.Advance(29 * time.Minute)
	assert.Zero(t, h.engine.ExpireIdle(context.Background()))
	assert.True(t, h.engine.InProgress(h.key))

	h.clock.Advance(31 * time.Minute)
	assert.False(t, h.engine.InProgress(h.key))
	assert.Equal(t, 1, h.engine.ExpireIdle(context.Background()))
	assert.Equal(t, msgExpired, h.lastReply())

	h.text("Pixel")
	assert.Equal(t, msgExpired, h.lastReply(), "text after expiry is not treated as an answer")
}

func TestSessionsAreIsolatedPerUserAndChat(t *testing.T) {
	h := newHarness(t)
	other := state.Key{UserID: 20, ChatID: 20}
	h.client.SetRole(other.UserID, chat.RoleAdministrator)

	var wg sync.WaitGroup
	for _, key := range []state.Key{h.key, other} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			assert.NoError(t, h.engine.Handle(ctx, TextEvent(key, "/start")))
			assert.NoError(t, h.engine.Handle(ctx, TextEvent(key, "/skip")))
			assert.NoError(t, h.engine.Handle(ctx, TextEvent(key, "/skip")))
			assert.NoError(t, h.engine.Handle(ctx, TextEvent(key, fmt.Sprintf("ROM-%d", key.UserID))))
		}()
	}
	wg.Wait()

	for _, key := range []state.Key{h.key, other} {
		entry, ok := h.engine.sessions.Get(key)
		require.True(t, ok)
		assert.Equal(t, StepDevice, entry.State)
		assert.Equal(t, fmt.Sprintf("ROM-%d", key.UserID), entry.Data.session.Title)
	}
}

func TestParseCommand(t *testing.T) {
	cases := map[string]Command{
		"/start":         CommandStart,
		"/help":          CommandHelp,
		"/SKIP":          CommandSkip,
		"/done@rom_bot":  CommandDone,
		" /cancel now":   CommandCancel,
		"/publish":       CommandUnknown,
		"MyROM":          CommandNone,
		"https://x.io/a": CommandNone,
		"":               CommandNone,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseCommand(in), "ParseCommand(%q)", in)
	}
	assert.Equal(t, "skip", CommandSkip.String())
	assert.Equal(t, "none", CommandNone.String())
}
