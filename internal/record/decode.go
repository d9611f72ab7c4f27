package record

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/bluesky-social/indigo/api/bsky"
	adata "github.com/bluesky-social/indigo/atproto/data"
	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/ipfs/go-cid"

	"github.com/primal-host/firehose-consumer/internal/firehose"
)

func cidFromString(s string) (cid.Cid, error) {
	return cid.Decode(s)
}

// ErrRecordDecode wraps CAR-resolution and CBOR-decode failures for a
// single operation; callers skip the operation and continue the
// stream.
var ErrRecordDecode = fmt.Errorf("record: decode failed")

// Decoder resolves an operation's record bytes out of its commit's CAR
// block set and projects them into a Record.
type Decoder struct {
	Log *slog.Logger
}

// NewDecoder builds a Decoder. A nil logger falls back to slog.Default.
func NewDecoder(log *slog.Logger) *Decoder {
	if log == nil {
		log = slog.Default()
	}
	return &Decoder{Log: log}
}

// Decode runs the CAR resolver against carBytes for op.Raw.CID (when
// present), deserialises the result per op.Kind, and projects it into
// a Record. Deletes carry no CID and are never resolved; they become
// an Other record with a nil Value so downstream consumers still see
// the path/action. Non-create actions other than delete are likewise
// demoted to Other, per the classifier's documented default policy.
func (d *Decoder) Decode(did string, op firehose.Operation, carBytes []byte) (Record, error) {
	if _, err := syntax.ParseDID(did); err != nil {
		return Record{}, fmt.Errorf("%w: malformed repo did %q: %v", ErrRecordDecode, did, err)
	}

	rec := Record{Kind: op.Kind, DID: did, Path: op.Raw.Path, Action: op.Raw.Action}

	if op.Raw.Action == "delete" {
		rec.Kind = firehose.OperationOther
		rec.Other = &OtherRecord{Collection: op.Collection, Action: op.Raw.Action}
		return rec, nil
	}

	if op.Raw.Action != "create" {
		op = firehose.Operation{Kind: firehose.OperationOther, Collection: op.Collection, Raw: op.Raw}
		rec.Kind = firehose.OperationOther
	}

	if op.Raw.CID == nil {
		return Record{}, fmt.Errorf("%w: %s has no record cid", ErrRecordDecode, op.Raw.Path)
	}

	raw, err := firehose.ResolveRecord(*op.Raw.CID, carBytes)
	if err != nil {
		return Record{}, fmt.Errorf("%w: resolve %s: %v", ErrRecordDecode, op.Raw.Path, err)
	}

	switch op.Kind {
	case firehose.OperationPost:
		post, err := decodePost(did, *op.Raw.CID, raw)
		if err != nil {
			return Record{}, err
		}
		rec.Post = post

	case firehose.OperationLike, firehose.OperationRepost, firehose.OperationFollow,
		firehose.OperationBlock, firehose.OperationListItem:
		ev, err := decodeGraphEvent(did, *op.Raw.CID, op.Kind, raw)
		if err != nil {
			return Record{}, err
		}
		rec.Graph = ev

	case firehose.OperationProfile:
		prof, err := decodeProfile(did, raw)
		if err != nil {
			return Record{}, err
		}
		rec.Profile = prof

	default:
		val, err := decodeOther(raw)
		if err != nil {
			d.Log.Warn("generic record value undecodable, emitting without it", "path", op.Raw.Path, "err", err)
			val = nil
		}
		rec.Other = &OtherRecord{Collection: op.Collection, Action: op.Raw.Action, Value: val}
	}

	return rec, nil
}

func decodePost(did string, recCID cid.Cid, raw []byte) (*Post, error) {
	var wire bsky.FeedPost
	if err := wire.UnmarshalCBOR(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: post cbor: %v", ErrRecordDecode, err)
	}

	createdAt, err := parseCreatedAt(wire.CreatedAt)
	if err != nil {
		return nil, err
	}

	post := &Post{
		Author:    did,
		CID:       recCID,
		CreatedAt: createdAt,
		Text:      wire.Text,
		Langs:     append([]string(nil), wire.Langs...),
		Tags:      append([]string(nil), wire.Tags...),
		Labels:    projectPostLabels(wire.Labels),
		Embed:     projectEmbed(wire.Embed),
	}

	if wire.Reply != nil && wire.Reply.Parent != nil && wire.Reply.Root != nil {
		parent, errP := cidFromString(wire.Reply.Parent.Cid)
		root, errR := cidFromString(wire.Reply.Root.Cid)
		if errP == nil && errR == nil {
			post.Reply = &ReplyRef{Parent: parent, Root: root}
		}
	}

	return post, nil
}

func decodeGraphEvent(did string, opCID cid.Cid, kind firehose.OperationKind, raw []byte) (*GraphEvent, error) {
	ev := &GraphEvent{Author: did, CID: opCID}
	var err error

	switch kind {
	case firehose.OperationLike:
		var wire bsky.FeedLike
		if err := wire.UnmarshalCBOR(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("%w: like cbor: %v", ErrRecordDecode, err)
		}
		ev.Kind = GraphLike
		ev.CreatedAt, err = parseCreatedAt(wire.CreatedAt)
		if err != nil {
			return nil, err
		}
		if wire.Subject != nil {
			ev.Subject = wire.Subject.Cid
		}

	case firehose.OperationRepost:
		var wire bsky.FeedRepost
		if err := wire.UnmarshalCBOR(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("%w: repost cbor: %v", ErrRecordDecode, err)
		}
		ev.Kind = GraphRepost
		ev.CreatedAt, err = parseCreatedAt(wire.CreatedAt)
		if err != nil {
			return nil, err
		}
		if wire.Subject != nil {
			ev.Subject = wire.Subject.Cid
		}

	case firehose.OperationFollow:
		var wire bsky.GraphFollow
		if err := wire.UnmarshalCBOR(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("%w: follow cbor: %v", ErrRecordDecode, err)
		}
		ev.Kind = GraphFollow
		ev.CreatedAt, err = parseCreatedAt(wire.CreatedAt)
		if err != nil {
			return nil, err
		}
		ev.Subject = wire.Subject

	case firehose.OperationBlock:
		var wire bsky.GraphBlock
		if err := wire.UnmarshalCBOR(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("%w: block cbor: %v", ErrRecordDecode, err)
		}
		ev.Kind = GraphBlock
		ev.CreatedAt, err = parseCreatedAt(wire.CreatedAt)
		if err != nil {
			return nil, err
		}
		ev.Subject = wire.Subject

	case firehose.OperationListItem:
		var wire bsky.GraphListitem
		if err := wire.UnmarshalCBOR(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("%w: listitem cbor: %v", ErrRecordDecode, err)
		}
		ev.Kind = GraphListItem
		ev.CreatedAt, err = parseCreatedAt(wire.CreatedAt)
		if err != nil {
			return nil, err
		}
		ev.Subject = wire.Subject
		ev.List = wire.List
	}

	return ev, nil
}

func decodeProfile(did string, raw []byte) (*Profile, error) {
	var wire bsky.ActorProfile
	if err := wire.UnmarshalCBOR(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: profile cbor: %v", ErrRecordDecode, err)
	}

	prof := &Profile{
		DID:         did,
		Description: derefString(wire.Description),
		DisplayName: derefString(wire.DisplayName),
		Labels:      projectProfileLabels(wire.Labels),
	}

	if wire.Avatar != nil {
		b := projectBlob(wire.Avatar)
		prof.Avatar = &b
	}
	if wire.Banner != nil {
		b := projectBlob(wire.Banner)
		prof.Banner = &b
	}
	if wire.CreatedAt != nil {
		if ts, err := parseCreatedAt(*wire.CreatedAt); err == nil {
			prof.CreatedAt = &ts
		}
	}
	if wire.PinnedPost != nil {
		if c, err := cidFromString(wire.PinnedPost.Cid); err == nil {
			prof.PinnedPost = &c
		}
	}

	return prof, nil
}

// decodeOther decodes a record this consumer does not project,
// generically, as a plain Go value — used for diagnostics only.
func decodeOther(raw []byte) (map[string]any, error) {
	val, err := adata.UnmarshalCBOR(raw)
	if err != nil {
		return nil, fmt.Errorf("generic cbor decode: %w", err)
	}
	m, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("generic record is not a map (got %T)", val)
	}
	return m, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
