package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaylistIDFromURL(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"https://youtube.com/playlist?list=PL123&foo=bar", "PL123", true},
		{"https://www.youtube.com/watch?v=abc&list=PLxyz&index=3", "PLxyz", true},
		{"https://youtube.com/watch?v=abc", "", false},
		{"https://youtube.com/playlist", "", false},
		{"PL123", "", false},
		{"https://youtube.com/playlist?list=", "", false},
		{"https://youtube.com/playlist?list", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := PlaylistIDFromURL(tc.in)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
