package eventstream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/primal-host/firehose-consumer/internal/firehose"
)

func TestStream_Run_SkipsUndecodableOpsAndContinues(t *testing.T) {
	s := New(nil)

	in := make(chan firehose.Commit, 2)
	in <- firehose.Commit{
		DID: "did:plc:x4pssacf24wuotdl65zntnsr",
		Ops: []firehose.RawOp{
			{Path: "app.bsky.feed.post/abc", Action: "create", CID: nil}, // missing CID, decode error
			{Path: "app.bsky.graph.follow/def", Action: "delete"},       // delete, always succeeds as Other
		},
	}
	close(in)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out := s.Run(ctx, in)

	var recs []any
	for rec := range out {
		recs = append(recs, rec)
	}
	require.Len(t, recs, 1, "the undecodable create op should be dropped, the delete op should survive as Other")
}
