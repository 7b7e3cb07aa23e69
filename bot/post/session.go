// Package post holds the announcement being composed and renders it.
package post

import (
	"time"

	"github.com/google/uuid"
)

// BuildDateLayout renders the build date as DD/MM/YYYY.
const BuildDateLayout = "02/01/2006"

// DownloadLink is one build variant and where to get it.
type DownloadLink struct {
	Variant string
	URL     string
}

// Session is the set of answers collected for one announcement.
type Session struct {
	ID string

	Banner     string // Telegram file id
	Tags       []string
	Title      string
	Device     string
	Maintainer string

	Screenshots     []string
	Changelog       string
	DeviceChangelog string
	Downloads       []DownloadLink
	Donate          string
	Readme          string
	Notes           string

	BuildDate string
	StartedAt time.Time
}

// NewSession starts an empty session dated now.
func NewSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		BuildDate: now.Format(BuildDateLayout),
		StartedAt: now,
	}
}

// AddScreenshot appends a screenshot link.
func (s *Session) AddScreenshot(url string) {
	s.Screenshots = append(s.Screenshots, url)
}

// SetDownload adds link, replacing the URL in place when the variant exists.
func (s *Session) SetDownload(link DownloadLink) {
	for i := range s.Downloads {
		if s.Downloads[i].Variant == link.Variant {
			s.Downloads[i].URL = link.URL
			return
		}
	}
	s.Downloads = append(s.Downloads, link)
}

// HasBanner reports whether a banner image was supplied.
func (s *Session) HasBanner() bool {
	return s.Banner != ""
}
