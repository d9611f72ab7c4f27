package record

import (
	"testing"

	atproto "github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

func testCID(t *testing.T) cid.Cid {
	t.Helper()
	h, err := multihash.Sum([]byte("embed-fixture"), multihash.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(cid.Raw, h)
}

func TestProjectEmbed_Images(t *testing.T) {
	e := &bsky.FeedPost_Embed{
		EmbedImages: &bsky.EmbedImages{
			Images: []*bsky.EmbedImages_Image{
				{Alt: "a cat", Image: &lexutil.LexBlob{MimeType: "image/jpeg", Size: 100}},
			},
		},
	}
	got := projectEmbed(e)
	require.NotNil(t, got)
	require.Equal(t, EmbedImages, got.Kind)
	require.Len(t, got.Images, 1)
	require.Equal(t, "a cat", got.Images[0].Alt)
}

func TestProjectEmbed_External(t *testing.T) {
	e := &bsky.FeedPost_Embed{
		EmbedExternal: &bsky.EmbedExternal{
			External: &bsky.EmbedExternal_External{
				Description: "desc", Title: "title", Uri: "https://example.com",
			},
		},
	}
	got := projectEmbed(e)
	require.Equal(t, EmbedExternal, got.Kind)
	require.Equal(t, "https://example.com", got.External.URI)
}

func TestProjectEmbed_Record(t *testing.T) {
	c := testCID(t)
	e := &bsky.FeedPost_Embed{
		EmbedRecord: &bsky.EmbedRecord{
			Record: &atproto.RepoStrongRef{Cid: c.String()},
		},
	}
	got := projectEmbed(e)
	require.Equal(t, EmbedRecord, got.Kind)
	require.True(t, got.Record.Equals(c))
}

func TestProjectEmbed_RecordWithMedia(t *testing.T) {
	c := testCID(t)
	e := &bsky.FeedPost_Embed{
		EmbedRecordWithMedia: &bsky.EmbedRecordWithMedia{
			Record: &bsky.EmbedRecord{Record: &atproto.RepoStrongRef{Cid: c.String()}},
			Media: &bsky.EmbedRecordWithMedia_Media{
				EmbedImages: &bsky.EmbedImages{
					Images: []*bsky.EmbedImages_Image{{Alt: "x", Image: &lexutil.LexBlob{}}},
				},
			},
		},
	}
	got := projectEmbed(e)
	require.Equal(t, EmbedRecordWithMedia, got.Kind)
	require.True(t, got.Record.Equals(c))
	require.Len(t, got.Media, 1)
	require.Equal(t, MediaImage, got.Media[0].Kind)
}

func TestProjectEmbed_Unknown(t *testing.T) {
	got := projectEmbed(&bsky.FeedPost_Embed{})
	require.Equal(t, EmbedUnknown, got.Kind)
}

func TestProjectEmbed_Nil(t *testing.T) {
	require.Nil(t, projectEmbed(nil))
}
