package flow

// Replies sent by the conversation. All are HTML.
const (
	msgNotAdmin  = "❌ You must be a channel admin."
	msgCancelled = "❌ Operation cancelled."
	msgPublished = "✅ Successfully published!"
	msgExpired   = "⌛ Post session expired. Send /start to begin again."
	msgNoSession = "ℹ️ No post in progress. Send /start to begin a new post."
	msgStaleBtn  = "This preview is no longer active."

	promptBanner       = "📸 Send banner image or /skip to omit:"
	promptTags         = "📝 Enter hashtags (#tag1 #tag2) or /skip:"
	promptTitle        = "🔤 Enter ROM Title:"
	promptDevice       = "📱 Enter Device Name:"
	promptMaintainer   = "👤 Enter Maintainer (@username):"
	promptScreenshots  = "📸 Send screenshots (photo) or URLs, then /done:"
	promptChangelog    = "📝 Enter changelog text, URL, or /skip:"
	promptDevChangelog = "📝 Enter device changelog text, URL, or /skip:"
	promptDownloads    = "🔗 Enter download links (Variant|URL). /done when finished:"
	promptDonate       = "💰 Enter donation link or /skip:"
	promptReadme       = "📖 Enter readme text, URL, or /skip:"
	promptNotes        = "📝 Any notes? Send lines or /skip:"

	msgScreenshotSaved = "✅ Screenshot saved! More or /done"
	msgScreenshotURL   = "✅ URL saved! More or /done"
	msgDownloadSaved   = "✅ %s saved. More or /done?"

	errBanner       = "❌ Send a banner image or /skip."
	errTags         = "❌ Send hashtags as text or /skip."
	errTitle        = "❌ The ROM title is required."
	errDevice       = "❌ The device name is required."
	errMaintainer   = "❌ The maintainer is required."
	errScreenshots  = "❌ Send photo, valid URL, or /done."
	errNoScreenshot = "⚠️ Add at least one screenshot."
	errChangelog    = "❌ Send changelog text, a URL, or /skip."
	errDevChangelog = "❌ Send device changelog text, a URL, or /skip."
	errDownload     = "❌ Format Variant|URL or /done."
	errNoDownload   = "⚠️ At least one download link required."
	errDonate       = "❌ Send a valid donation URL or /skip."
	errReadme       = "❌ Send readme text, a URL, or /skip."
	errNotes        = "❌ Send notes as text or /skip."
	errConfirm      = "❌ Use the buttons above to publish or cancel."

	helpText = "📚 <b>Bot Help</b>\n\n" +
		"/start – begin new ROM post\n" +
		"/cancel – cancel at any time\n\n" +
		"Flow:\n" +
		"1. Banner → 2. Tags → 3. Title → 4. Device → 5. Maintainer\n" +
		"6. Screenshots → 7. Changelog → 8. Device Changelog\n" +
		"9. Download Links → 10. Donate → 11. Readme → 12. Notes\n" +
		"Then Preview → Publish"
)

// Mirror headings.
const (
	headingScreenshots     = "Screenshots"
	headingChangelog       = "Changelog"
	headingDeviceChangelog = "Device Changelog"
	headingReadme          = "Readme"
)
