package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name        string
		cb          *tele.Callback
		wantKey     string
		wantPayload string
	}{
		{name: "nil", cb: nil},
		{name: "encoded", cb: &tele.Callback{Data: "\fpost_publish|42"}, wantKey: "post_publish", wantPayload: "42"},
		{name: "encoded without payload", cb: &tele.Callback{Data: "\fpost_cancel"}, wantKey: "post_cancel"},
		{name: "resolved by telebot", cb: &tele.Callback{Unique: "post_publish", Data: "x"}, wantKey: "post_publish", wantPayload: "x"},
		{name: "plain data", cb: &tele.Callback{Data: "publish"}, wantKey: "publish"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(tc.cb)
			assert.Equal(t, tc.wantKey, key)
			assert.Equal(t, tc.wantPayload, payload)
		})
	}
}
