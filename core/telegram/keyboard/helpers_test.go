package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineButtonsRows(t *testing.T) {
	markup := InlineButtonsRows(
		[]InlineBtn{{Text: "✅ Publish", Unique: "post_publish"}, {Text: "❌ Cancel", Unique: "post_cancel"}},
		nil,
	)
	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 2)
	assert.Equal(t, "✅ Publish", row[0].Text)
	assert.Equal(t, "post_publish", row[0].Unique)
	assert.Equal(t, "post_cancel", row[1].Unique)
}

func TestRemoveKeyboard(t *testing.T) {
	assert.True(t, RemoveKeyboard().RemoveKeyboard)
}
