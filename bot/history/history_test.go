package history

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/rompostbot/bot/chat"
	"github.com/m3rciful/rompostbot/bot/post"
	"github.com/m3rciful/rompostbot/bot/publish"
)

func TestFromRecord(t *testing.T) {
	at := time.Date(2026, 10, 14, 14, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	s := post.NewSession(at)
	s.Title, s.Device, s.Maintainer = "MyROM", "Pixel", "@dev"
	s.Banner = "file-1"

	row, err := FromRecord(publish.Record{
		Session:     s,
		UserID:      7,
		ChatID:      8,
		Message:     chat.MessageRef{ChatID: -1001, MessageID: 55},
		Caption:     "<b>MyROM</b>",
		PublishedAt: at,
	})
	require.NoError(t, err)

	assert.Equal(t, s.ID, row.SessionID.String())
	assert.NotEqual(t, row.SessionID, row.ID)
	assert.Equal(t, int64(-1001), row.ChannelID)
	assert.Equal(t, int64(55), row.MessageID)
	assert.True(t, row.HasBanner)
	assert.Equal(t, time.UTC, row.PublishedAt.Location())
	assert.True(t, at.Equal(row.PublishedAt))
}

func TestFromRecordRejectsBadSession(t *testing.T) {
	_, err := FromRecord(publish.Record{})
	assert.Error(t, err)

	_, err = FromRecord(publish.Record{Session: &post.Session{ID: "not-a-uuid"}})
	assert.Error(t, err)
}

func TestInsertBindsEveryColumn(t *testing.T) {
	query, args, err := sqlx.Named(insertPublication, Publication{})
	require.NoError(t, err)
	assert.Len(t, args, 12)
	assert.NotContains(t, query, ":")
}

func TestRecordSurfacesMappingError(t *testing.T) {
	err := NewStore(nil).Record(context.Background(), publish.Record{})
	assert.Error(t, err)
}
