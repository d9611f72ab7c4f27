package sink

import (
	"strings"
	"time"

	"github.com/primal-host/firehose-consumer/internal/firehose"
	"github.com/primal-host/firehose-consumer/internal/record"
)

// postView is the flattened, JSON/CSV-friendly projection of a Post
// record. Kinds other than Post are represented separately in JSONL
// and are not written to CSV at all (the fixed CSV column list is
// post-specific, matching the source format it preserves).
type postView struct {
	ID        string   `json:"id"`
	Author    string   `json:"author"`
	Text      string   `json:"text"`
	CreatedAt string   `json:"created_at"`
	Labels    []string `json:"labels"`
	Tags      []string `json:"tags"`
}

func toPostView(rec record.Record) postView {
	p := rec.Post
	return postView{
		ID:        p.CID.String(),
		Author:    p.Author,
		Text:      p.Text,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		Labels:    p.Labels,
		Tags:      p.Tags,
	}
}

// genericView is the JSONL shape for every other record kind: enough
// to reconstruct what happened without committing to a schema per
// collection.
type genericView struct {
	Kind      string `json:"kind"`
	DID       string `json:"did"`
	Path      string `json:"path"`
	Action    string `json:"action"`
	Subject   string `json:"subject,omitempty"`
	List      string `json:"list,omitempty"`
	Collection string `json:"collection,omitempty"`
}

func kindName(k firehose.OperationKind) string {
	switch k {
	case firehose.OperationPost:
		return "post"
	case firehose.OperationLike:
		return "like"
	case firehose.OperationFollow:
		return "follow"
	case firehose.OperationBlock:
		return "block"
	case firehose.OperationRepost:
		return "repost"
	case firehose.OperationListItem:
		return "listitem"
	case firehose.OperationProfile:
		return "profile"
	default:
		return "other"
	}
}

func toGenericView(rec record.Record) genericView {
	v := genericView{Kind: kindName(rec.Kind), DID: rec.DID, Path: rec.Path, Action: rec.Action}
	if rec.Graph != nil {
		v.Subject = rec.Graph.Subject
		v.List = rec.Graph.List
	}
	if rec.Other != nil {
		v.Collection = rec.Other.Collection
	}
	return v
}

func joinSemicolon(vals []string) string {
	return strings.Join(vals, ";")
}
