package firehose

import "strings"

// Collection NSIDs this consumer classifies by name; anything else
// becomes OperationOther.
const (
	CollectionPost     = "app.bsky.feed.post"
	CollectionLike     = "app.bsky.feed.like"
	CollectionFollow   = "app.bsky.graph.follow"
	CollectionBlock    = "app.bsky.graph.block"
	CollectionRepost   = "app.bsky.feed.repost"
	CollectionListItem = "app.bsky.graph.listitem"
	CollectionProfile  = "app.bsky.actor.profile"
)

// OperationKind tags a classified Operation by collection.
type OperationKind int

const (
	OperationPost OperationKind = iota
	OperationLike
	OperationFollow
	OperationBlock
	OperationRepost
	OperationListItem
	OperationProfile
	OperationOther
)

// Operation is a RawOp classified by its collection NSID. Collection is
// only populated for OperationOther, for diagnostics.
type Operation struct {
	Kind       OperationKind
	Collection string // set only when Kind == OperationOther
	Raw        RawOp
}

// Classify maps a raw op's path prefix (the NSID before the first "/")
// to an Operation variant. No validation of the rkey is performed.
func Classify(op RawOp) Operation {
	nsid := op.Path
	if idx := strings.IndexByte(op.Path, '/'); idx >= 0 {
		nsid = op.Path[:idx]
	}

	switch nsid {
	case CollectionPost:
		return Operation{Kind: OperationPost, Raw: op}
	case CollectionLike:
		return Operation{Kind: OperationLike, Raw: op}
	case CollectionFollow:
		return Operation{Kind: OperationFollow, Raw: op}
	case CollectionBlock:
		return Operation{Kind: OperationBlock, Raw: op}
	case CollectionRepost:
		return Operation{Kind: OperationRepost, Raw: op}
	case CollectionListItem:
		return Operation{Kind: OperationListItem, Raw: op}
	case CollectionProfile:
		return Operation{Kind: OperationProfile, Raw: op}
	default:
		return Operation{Kind: OperationOther, Collection: nsid, Raw: op}
	}
}
