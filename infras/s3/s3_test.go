package s3_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roombooking/infras/s3"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/booking/a.jpg", s3.PublicURL("https://cdn.example.com", "booking/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/booking/a.jpg", s3.PublicURL("https://cdn.example.com/", "/booking/a.jpg"))
}

func TestObjectKeyFromURL(t *testing.T) {
	const (
		domain   = "https://cdn.example.com"
		endpoint = "https://s3.example.com"
		bucket   = "rooms"
	)

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "public domain", url: "https://cdn.example.com/room/x.png", want: "room/x.png"},
		{name: "api endpoint path style", url: "https://s3.example.com/rooms/profile/y.gif", want: "profile/y.gif"},
		{name: "foreign url", url: "http://x/photo.jpg", want: ""},
		{name: "empty", url: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s3.ObjectKeyFromURL(domain, endpoint, bucket, tt.url))
		})
	}

	assert.Equal(t, "k.png", s3.ObjectKeyFromURL(domain, endpoint, bucket, s3.PublicURL(domain, "k.png")))
}
