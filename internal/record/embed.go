package record

import (
	"github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/ipfs/go-cid"
)

func projectAspectRatio(ar *bsky.EmbedDefs_AspectRatio) *AspectRatio {
	if ar == nil {
		return nil
	}
	return &AspectRatio{Width: ar.Width, Height: ar.Height}
}

func projectBlob(b *lexutil.LexBlob) Blob {
	if b == nil {
		return Blob{}
	}
	size := b.Size
	return Blob{CID: b.Ref.String(), MimeType: b.MimeType, Size: &size}
}

func projectImages(imgs []*bsky.EmbedImages_Image) []Image {
	if len(imgs) == 0 {
		return nil
	}
	out := make([]Image, 0, len(imgs))
	for _, img := range imgs {
		if img == nil {
			continue
		}
		out = append(out, Image{
			Alt:         img.Alt,
			Blob:        projectBlob(img.Image),
			AspectRatio: projectAspectRatio(img.AspectRatio),
		})
	}
	return out
}

func projectVideo(v *bsky.EmbedVideo) Video {
	var alt string
	if v.Alt != nil {
		alt = *v.Alt
	}
	return Video{
		Alt:         alt,
		Blob:        projectBlob(v.Video),
		AspectRatio: projectAspectRatio(v.AspectRatio),
	}
}

// projectEmbed classifies a FeedPost's embed into the flat Embed sum
// type. Anything it cannot recognise becomes EmbedUnknown, per the
// "flat sum types with an explicit fall-through tag" redesign.
func projectEmbed(e *bsky.FeedPost_Embed) *Embed {
	if e == nil {
		return nil
	}

	switch {
	case e.EmbedImages != nil:
		return &Embed{Kind: EmbedImages, Images: projectImages(e.EmbedImages.Images)}

	case e.EmbedExternal != nil && e.EmbedExternal.External != nil:
		ext := e.EmbedExternal.External
		link := &ExternalLink{
			Description: ext.Description,
			Title:       ext.Title,
			URI:         ext.Uri,
		}
		if ext.Thumb != nil {
			thumb := projectBlob(ext.Thumb)
			link.Thumb = &thumb
		}
		return &Embed{Kind: EmbedExternal, External: link}

	case e.EmbedRecord != nil && e.EmbedRecord.Record != nil:
		c, err := cid.Decode(e.EmbedRecord.Record.Cid)
		if err != nil {
			return &Embed{Kind: EmbedUnknown}
		}
		return &Embed{Kind: EmbedRecord, Record: &c}

	case e.EmbedRecordWithMedia != nil:
		rwm := e.EmbedRecordWithMedia
		var quoted *cid.Cid
		if rwm.Record != nil && rwm.Record.Record != nil {
			c, err := cid.Decode(rwm.Record.Record.Cid)
			if err == nil {
				quoted = &c
			}
		}

		var media []Media
		switch {
		case rwm.Media != nil && rwm.Media.EmbedImages != nil:
			for _, img := range projectImages(rwm.Media.EmbedImages.Images) {
				img := img
				media = append(media, Media{Kind: MediaImage, Image: &img})
			}
		case rwm.Media != nil && rwm.Media.EmbedVideo != nil:
			v := projectVideo(rwm.Media.EmbedVideo)
			media = append(media, Media{Kind: MediaVideo, Video: &v})
		default:
			return &Embed{Kind: EmbedUnknown}
		}

		return &Embed{Kind: EmbedRecordWithMedia, Record: quoted, Media: media}

	default:
		return &Embed{Kind: EmbedUnknown}
	}
}

// projectPostLabels extracts self-label values from a FeedPost's Labels
// union, ignoring any other label scheme.
func projectPostLabels(l *bsky.FeedPost_Labels) []string {
	if l == nil || l.LabelDefs_SelfLabels == nil {
		return nil
	}
	vals := make([]string, 0, len(l.LabelDefs_SelfLabels.Values))
	for _, v := range l.LabelDefs_SelfLabels.Values {
		if v != nil {
			vals = append(vals, v.Val)
		}
	}
	return selfLabelValues(vals)
}

// projectProfileLabels mirrors projectPostLabels for the profile
// record's distinct (but structurally identical) Labels union.
func projectProfileLabels(l *bsky.ActorProfile_Labels) []string {
	if l == nil || l.LabelDefs_SelfLabels == nil {
		return nil
	}
	vals := make([]string, 0, len(l.LabelDefs_SelfLabels.Values))
	for _, v := range l.LabelDefs_SelfLabels.Values {
		if v != nil {
			vals = append(vals, v.Val)
		}
	}
	return selfLabelValues(vals)
}
