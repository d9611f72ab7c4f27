// Package record projects decoded ATProto repository records (posts,
// graph events, profiles, and everything else) into the stable domain
// shapes the rest of the consumer works with.
package record

import (
	"time"

	"github.com/ipfs/go-cid"

	"github.com/primal-host/firehose-consumer/internal/firehose"
)

// AspectRatio is a width/height pair attached to an image or video embed.
type AspectRatio struct {
	Width  int64
	Height int64
}

// Blob is a reference to a content-addressed binary (image, video, ...).
// Size is nil for untyped legacy blob references, which carry no size.
type Blob struct {
	CID      string
	MimeType string
	Size     *int64
}

// Image is one entry of an Images embed, or the media half of a
// RecordWithMedia embed.
type Image struct {
	Alt         string
	Blob        Blob
	AspectRatio *AspectRatio
}

// Video is the media half of a RecordWithMedia embed. A top-level video
// embed is projected as EmbedUnknown. Alt is optional for videos,
// unlike images.
type Video struct {
	Alt         string
	Blob        Blob
	AspectRatio *AspectRatio
}

// MediaKind tags a Media variant.
type MediaKind int

const (
	MediaImage MediaKind = iota
	MediaVideo
)

// Media is a single image or video attached to a RecordWithMedia embed.
type Media struct {
	Kind  MediaKind
	Image *Image
	Video *Video
}

// ExternalLink is the payload of an External embed (a link card).
type ExternalLink struct {
	Description string
	Thumb       *Blob
	Title       string
	URI         string
}

// EmbedKind tags an Embed variant.
type EmbedKind int

const (
	EmbedNone EmbedKind = iota
	EmbedImages
	EmbedExternal
	EmbedRecord
	EmbedRecordWithMedia
	EmbedUnknown
)

// Embed is a post's attached media or quoted record, at most one per
// post. Only the fields relevant to Kind are populated.
type Embed struct {
	Kind     EmbedKind
	Images   []Image
	External *ExternalLink
	Record   *cid.Cid // quoted post, for EmbedRecord and EmbedRecordWithMedia
	Media    []Media  // for EmbedRecordWithMedia only
}

// ReplyRef identifies the parent and thread root of a reply post.
type ReplyRef struct {
	Parent cid.Cid
	Root   cid.Cid
}

// Post is the projected app.bsky.feed.post record.
type Post struct {
	Author    string
	CID       cid.Cid
	CreatedAt time.Time
	Text      string
	Langs     []string
	Labels    []string
	Tags      []string
	Reply     *ReplyRef
	Embed     *Embed
}

// GraphEventKind tags a graph/feed interaction event.
type GraphEventKind int

const (
	GraphLike GraphEventKind = iota
	GraphRepost
	GraphFollow
	GraphBlock
	GraphListItem
)

// GraphEvent covers the five interaction records: Like, Repost, Follow,
// Block, ListItem. Subject is a CID string for Like/Repost (the subject
// is a strong reference to a post) and a DID for Follow/Block/ListItem.
// List is only populated for ListItem.
type GraphEvent struct {
	Kind      GraphEventKind
	Author    string
	Subject   string
	CreatedAt time.Time
	CID       cid.Cid
	List      string
}

// Profile is the projected app.bsky.actor.profile record, as emitted
// directly by the repo (not the richer profile fetched via the public
// API — see internal/profilecache for that).
type Profile struct {
	DID         string
	Avatar      *Blob
	Banner      *Blob
	CreatedAt   *time.Time
	Description string
	DisplayName string
	Labels      []string
	PinnedPost  *cid.Cid
}

// OtherRecord carries an operation this consumer does not project into
// a richer type, decoded only as a generic value for diagnostics.
type OtherRecord struct {
	Collection string
	Action     string
	Value      map[string]any
}

// Record is one event emitted by the event stream: exactly one of the
// typed fields is non-nil, chosen by Kind.
type Record struct {
	Kind   firehose.OperationKind
	DID    string
	Path   string
	Action string

	Post    *Post
	Graph   *GraphEvent
	Profile *Profile
	Other   *OtherRecord
}
