package post

import (
	"strings"

	"github.com/m3rciful/rompostbot/core/telegram/format"
)

// Branding is the channel-specific part of every announcement.
type Branding struct {
	SupportURL string
	// Footer lines are trusted configuration and rendered as-is.
	Footer []string
}

// DefaultBranding returns the POCO HUB links.
func DefaultBranding() Branding {
	return Branding{
		SupportURL: "https://t.me/POCOHUB_X3ChatEN",
		Footer: []string{
			"Follow: @POCOHUB_X3EN",
			"Join: @POCOHUB_X3ChatEN",
			"Gcam: @SuryaKarna_GcamDiscussion",
			"TG Mirror: @suryarom",
		},
	}
}

// CaptionBuilder renders a Session as a Telegram HTML caption.
type CaptionBuilder struct {
	branding Branding
}

// NewCaptionBuilder returns a builder using b; an empty SupportURL or a nil
// Footer falls back to DefaultBranding.
func NewCaptionBuilder(b Branding) CaptionBuilder {
	def := DefaultBranding()
	if b.SupportURL == "" {
		b.SupportURL = def.SupportURL
	}
	if b.Footer == nil {
		b.Footer = def.Footer
	}
	return CaptionBuilder{branding: b}
}

// Build renders s. User-supplied text is HTML-escaped.
func (b CaptionBuilder) Build(s *Session) string {
	esc := format.EscapeHTML
	var lines []string

	if len(s.Tags) > 0 {
		lines = append(lines, esc(strings.Join(s.Tags, " ")))
	}
	lines = append(lines,
		format.Bold(s.Title),
		"for "+esc(s.Device)+" is now available!",
		"By "+esc(s.Maintainer)+"\n",
	)

	if len(s.Screenshots) > 0 {
		lines = append(lines, bullet("Screenshots", s.Screenshots[0]))
	}
	if s.Changelog != "" {
		lines = append(lines, bullet("Changelog", s.Changelog))
	}
	if s.DeviceChangelog != "" {
		lines = append(lines, bullet("Device Changelog", s.DeviceChangelog))
	}
	if len(s.Downloads) > 0 {
		links := make([]string, 0, len(s.Downloads))
		for _, d := range s.Downloads {
			links = append(links, format.Link(d.URL, d.Variant))
		}
		lines = append(lines, "▫️ Download: "+strings.Join(links, " | "))
	}
	if s.Readme != "" {
		lines = append(lines, bullet("Read", s.Readme))
	}
	lines = append(lines, bullet("Support", b.branding.SupportURL))
	if s.Donate != "" {
		lines = append(lines, bullet("Donate", s.Donate))
	}
	lines = append(lines, "")

	if s.Notes != "" {
		lines = append(lines, "📝 Notes:")
		for _, l := range strings.Split(s.Notes, "\n") {
			lines = append(lines, "- "+esc(l))
		}
		lines = append(lines, "")
	}

	lines = append(lines, b.branding.Footer...)
	lines = append(lines, "Updated - "+s.BuildDate)
	return strings.Join(lines, "\n")
}

func bullet(label, url string) string {
	return "▫️ " + label + ": " + format.Link(url, "Here")
}
