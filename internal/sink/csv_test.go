package sink

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/primal-host/firehose-consumer/internal/firehose"
	"github.com/primal-host/firehose-consumer/internal/record"
)

func TestCSV_QuotesAndDuplicateTextColumn(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "posts-*.csv")
	require.NoError(t, err)

	csvSink, err := NewCSV(f, true)
	require.NoError(t, err)

	h, err := multihash.Sum([]byte("csv-fixture"), multihash.SHA2_256, -1)
	require.NoError(t, err)
	c := cid.NewCidV1(cid.Raw, h)

	post := &record.Post{
		Author:    "did:plc:abc",
		CID:       c,
		Text:      "hello, \"world\"\nnewline",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Labels:    []string{"spam", "nsfw"},
		Tags:      []string{"go"},
	}
	rec := record.Record{Kind: firehose.OperationPost, Post: post}

	require.NoError(t, csvSink.Export(context.Background(), rec))
	require.NoError(t, csvSink.Close())

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "id,author,text,created_at,text,labels,tags")
	require.Contains(t, content, `"hello, ""world""`)
	require.Contains(t, content, "spam;nsfw")
}

func TestCSV_SkipsNonPostRecords(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "posts-*.csv")
	require.NoError(t, err)
	csvSink, err := NewCSV(f, true)
	require.NoError(t, err)

	rec := record.Record{Kind: firehose.OperationFollow, Graph: &record.GraphEvent{}}
	require.NoError(t, csvSink.Export(context.Background(), rec))
	require.NoError(t, csvSink.Close())

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	require.Equal(t, 1, lines, "only the header line should be present")
}
