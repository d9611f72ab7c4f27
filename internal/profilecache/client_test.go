package profilecache

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchProfile_ProjectsAvatarAndBannerBlobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(getProfileResponse{
			DID:    "did:plc:x4pssacf24wuotdl65zntnsr",
			Handle: "alice.test",
			Avatar: "https://cdn.bsky.app/img/avatar/plain/did:plc:x4pssacf24wuotdl65zntnsr/bafkreihsq6kzrgb2jzyg3jowj4bfw5hwoh2dx7zagcplh5ooe2b5cdgche@jpeg",
			Banner: "https://cdn.bsky.app/img/banner/plain/did:plc:x4pssacf24wuotdl65zntnsr/bafkreibannerexample@png",
		})
	}))
	defer srv.Close()

	c := &HTTPClient{httpClient: srv.Client(), endpoint: srv.URL}

	user, err := c.FetchProfile(context.Background(), "did:plc:x4pssacf24wuotdl65zntnsr")
	require.NoError(t, err)

	require.NotNil(t, user.AvatarBlob)
	require.Equal(t, "bafkreihsq6kzrgb2jzyg3jowj4bfw5hwoh2dx7zagcplh5ooe2b5cdgche", user.AvatarBlob.CID)
	require.Equal(t, "image/jpeg", user.AvatarBlob.MimeType)

	require.NotNil(t, user.BannerBlob)
	require.Equal(t, "bafkreibannerexample", user.BannerBlob.CID)
	require.Equal(t, "image/png", user.BannerBlob.MimeType)
}
