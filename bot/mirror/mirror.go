// Package mirror posts long-form attachments to the discussion group and
// returns permanent links to them.
package mirror

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/rompostbot/bot/chat"
	"github.com/m3rciful/rompostbot/core/telegram/format"
)

// DefaultHost is the deep-link host.
const DefaultHost = "t.me"

// Mirror sends to one discussion chat.
type Mirror struct {
	client chat.Client
	chatID int64
	host   string
}

// New returns a Mirror for discussionID. An empty host selects DefaultHost.
func New(client chat.Client, discussionID int64, host string) *Mirror {
	if host = strings.TrimSpace(host); host == "" {
		host = DefaultHost
	}
	return &Mirror{client: client, chatID: discussionID, host: host}
}

// PostText sends text under a bold heading and links to it.
func (m *Mirror) PostText(ctx context.Context, heading, text string) (string, error) {
	body := format.Bold(heading) + "\n\n" + format.EscapeHTML(text)
	ref, err := m.client.SendText(ctx, m.chatID, body, chat.SendOptions{Silent: true})
	if err != nil {
		return "", fmt.Errorf("mirror: post %s: %w", heading, err)
	}
	return DeepLink(m.host, ref.ChatID, ref.MessageID), nil
}

// PostPhoto sends a photo captioned with a bold heading and links to it.
func (m *Mirror) PostPhoto(ctx context.Context, heading, fileID string) (string, error) {
	ref, err := m.client.SendPhoto(ctx, m.chatID, fileID, format.Bold(heading), chat.SendOptions{Silent: true})
	if err != nil {
		return "", fmt.Errorf("mirror: post %s photo: %w", heading, err)
	}
	return DeepLink(m.host, ref.ChatID, ref.MessageID), nil
}

// DeepLink builds https://<host>/c/<chat>/<message>, with the supergroup
// "-100" prefix removed from the chat id.
func DeepLink(host string, chatID int64, messageID int) string {
	id := strings.TrimPrefix(strconv.FormatInt(chatID, 10), "-100")
	return "https://" + host + "/c/" + id + "/" + strconv.Itoa(messageID)
}
