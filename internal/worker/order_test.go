package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectLink(t *testing.T) {
	const profile = "https://www.tiktok.com/@someone"
	const video = "https://www.tiktok.com/@someone/video/123"

	tests := []struct {
		name      string
		service   string
		secondary string
		want      string
	}{
		{name: "followers prefer profile", service: "TikTok Followers", secondary: video, want: profile},
		{name: "followers case-insensitive", service: "FREE FOLLOWERS", secondary: video, want: profile},
		{name: "members prefer profile", service: "Telegram Members", secondary: video, want: profile},
		{name: "abonnés prefer profile", service: "Abonnés Instagram", secondary: video, want: profile},
		{name: "views prefer video", service: "TikTok Views", secondary: video, want: video},
		{name: "views fall back to profile", service: "TikTok Views", secondary: "", want: profile},
		{name: "follower singular is not a follower service", service: "Follower boost", secondary: video, want: video},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectLink(tt.service, profile, tt.secondary))
		})
	}
}

func TestOrder_Form(t *testing.T) {
	o := Order{Service: "229", Link: "https://x", UUID: "u-1"}
	form := o.Form()

	assert.Equal(t, "order", form.Get("action"))
	assert.Equal(t, "229", form.Get("service"))
	assert.Equal(t, "https://x", form.Get("link"))
	assert.Equal(t, "u-1", form.Get("uuid"))
	assert.False(t, form.Has("videoId"))

	o.VideoID = "7301"
	assert.Equal(t, "7301", o.Form().Get("videoId"))
}
