package post

import (
	"errors"
	"regexp"
	"strings"
)

// ErrDownloadFormat rejects download input that is not "Variant|URL".
var ErrDownloadFormat = errors.New("post: expected Variant|URL")

var urlPattern = regexp.MustCompile(`^(?i:https?)://\S+$`)

// IsURL reports whether text is a single http(s) URL.
func IsURL(text string) bool {
	return urlPattern.MatchString(text)
}

// ParseDownloadLink splits "Variant|URL" on the first pipe.
func ParseDownloadLink(text string) (DownloadLink, error) {
	variant, url, ok := strings.Cut(text, "|")
	if !ok {
		return DownloadLink{}, ErrDownloadFormat
	}
	variant, url = strings.TrimSpace(variant), strings.TrimSpace(url)
	if variant == "" || !IsURL(url) {
		return DownloadLink{}, ErrDownloadFormat
	}
	return DownloadLink{Variant: variant, URL: url}, nil
}

// ParseTags splits hashtags on whitespace, keeping their order.
func ParseTags(text string) []string {
	return strings.Fields(text)
}
