package profilecache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/primal-host/firehose-consumer/internal/record"
)

const profileEndpoint = "https://public.api.bsky.app/xrpc/app.bsky.actor.getProfile"

// User is the richer profile fetched from the public API, distinct
// from the bare app.bsky.actor.profile record the repo itself carries.
// Avatar/Banner keep the raw CDN URL as returned by the API; AvatarBlob/
// BannerBlob carry the same CDN URL's embedded CID and MIME type when
// it matches the ".../<did>/<cid>@<ext>" shape this API always uses.
type User struct {
	DID            string
	Handle         string
	DisplayName    string
	Description    string
	Avatar         string
	AvatarBlob     *record.Blob
	Banner         string
	BannerBlob     *record.Blob
	Labels         []string
	FollowersCount int64
	FollowsCount   int64
	PostsCount     int64
	IndexedAt      time.Time
}

// HTTPClient fetches User profiles from the public ATProto API.
type HTTPClient struct {
	httpClient *http.Client
	endpoint   string
}

// NewHTTPClient builds an HTTPClient with a bounded request timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{httpClient: &http.Client{Timeout: timeout}, endpoint: profileEndpoint}
}

type getProfileResponse struct {
	DID            string   `json:"did"`
	Handle         string   `json:"handle"`
	DisplayName    string   `json:"displayName"`
	Description    string   `json:"description"`
	Avatar         string   `json:"avatar"`
	Banner         string   `json:"banner"`
	Labels         []label  `json:"labels"`
	FollowersCount int64    `json:"followersCount"`
	FollowsCount   int64    `json:"followsCount"`
	PostsCount     int64    `json:"postsCount"`
	IndexedAt      string   `json:"indexedAt"`
}

type label struct {
	Val string `json:"val"`
}

// FetchProfile implements Fetcher by calling the public getProfile
// endpoint and projecting its JSON envelope into a User.
func (c *HTTPClient) FetchProfile(ctx context.Context, did string) (User, error) {
	u := fmt.Sprintf("%s?actor=%s", c.endpoint, url.QueryEscape(did))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return User{}, fmt.Errorf("profilecache: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("profilecache: fetch %s: %w", did, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("profilecache: fetch %s: unexpected status %d", did, resp.StatusCode)
	}

	var body getProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return User{}, fmt.Errorf("profilecache: decode response for %s: %w", did, err)
	}

	labels := make([]string, 0, len(body.Labels))
	for _, l := range body.Labels {
		labels = append(labels, l.Val)
	}

	user := User{
		DID:            body.DID,
		Handle:         body.Handle,
		DisplayName:    body.DisplayName,
		Description:    body.Description,
		Avatar:         body.Avatar,
		Banner:         body.Banner,
		Labels:         labels,
		FollowersCount: body.FollowersCount,
		FollowsCount:   body.FollowsCount,
		PostsCount:     body.PostsCount,
	}
	if t, err := time.Parse(time.RFC3339, body.IndexedAt); err == nil {
		user.IndexedAt = t
	}
	if b, ok := record.ParseBlobURL(body.Avatar); ok {
		user.AvatarBlob = &b
	}
	if b, ok := record.ParseBlobURL(body.Banner); ok {
		user.BannerBlob = &b
	}

	return user, nil
}
