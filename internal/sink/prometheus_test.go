package sink

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/primal-host/firehose-consumer/internal/firehose"
	"github.com/primal-host/firehose-consumer/internal/record"
)

func fixtureCID(t *testing.T) cid.Cid {
	t.Helper()
	h, err := multihash.Sum([]byte("prom-fixture"), multihash.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(cid.Raw, h)
}

func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, cv.WithLabelValues(labels...).Write(m))
	return m.GetCounter().GetValue()
}

func TestPrometheus_GroupedLanguageCounter_E6(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, 0, true)

	post := &record.Post{Author: "did:plc:x", CID: fixtureCID(t), Langs: []string{"en", "ja"}}
	rec := record.Record{Kind: firehose.OperationPost, Post: post}

	require.NoError(t, p.Export(context.Background(), rec))

	require.Equal(t, float64(1), counterValue(t, p.postsByLangGrouped, "en,ja"))
	require.Equal(t, float64(1), counterValue(t, p.postsByLang, "en"))
	require.Equal(t, float64(1), counterValue(t, p.postsByLang, "ja"))
}

func TestPrometheus_NormalizeLangsDisabled_SkipsBCP47Normalisation(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, 0, false)

	post := &record.Post{Author: "did:plc:x", CID: fixtureCID(t), Langs: []string{"EN-US"}}
	rec := record.Record{Kind: firehose.OperationPost, Post: post}

	require.NoError(t, p.Export(context.Background(), rec))

	// Normalisation would reduce "EN-US" to its primary subtag "en";
	// disabled, the tag is only lowercased as a whole.
	require.Equal(t, float64(1), counterValue(t, p.postsByLang, "en-us"))
}

func TestGroupedLanguageLabel_EmptyIsNull(t *testing.T) {
	require.Equal(t, "null", groupedLanguageLabel(nil))
}

func TestExternalDomain_StripsWWW(t *testing.T) {
	d, ok := externalDomain("https://WWW.Example.com/path")
	require.True(t, ok)
	require.Equal(t, "example.com", d)
}

func TestExternalDomain_InvalidURL(t *testing.T) {
	_, ok := externalDomain("not a url")
	require.False(t, ok)
}
