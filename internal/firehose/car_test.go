package firehose

import (
	"bytes"
	"crypto/sha256"
	"testing"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	car "github.com/ipld/go-car"
	carutil "github.com/ipld/go-car/util"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

func TestCidsEqual_CrossVersion(t *testing.T) {
	data := []byte("hello firehose")
	sum := sha256.Sum256(data)
	hash, err := mh.Encode(sum[:], mh.SHA2_256)
	require.NoError(t, err)

	v0 := cid.NewCidV0(hash)
	v1 := cid.NewCidV1(cid.DagProtobuf, hash)

	require.True(t, cidsEqual(v0, v1))
	require.True(t, cidsEqual(v1, v0))
	require.Equal(t, normalizeCID(v0), normalizeCID(v1))
}

func TestResolveRecord_ToleratesCidVersionDrift(t *testing.T) {
	data := []byte(`{"$type":"app.bsky.feed.post"}`)
	sum := sha256.Sum256(data)
	hash, err := mh.Encode(sum[:], mh.SHA2_256)
	require.NoError(t, err)

	// The block is stored under its CIDv0 form...
	stored := cid.NewCidV0(hash)
	blk, err := blocks.NewBlockWithCid(data, stored)
	require.NoError(t, err)

	var buf bytes.Buffer
	header := &car.CarHeader{Roots: []cid.Cid{stored}, Version: 1}
	require.NoError(t, car.WriteHeader(header, &buf))
	require.NoError(t, carutil.LdWrite(&buf, blk.Cid().Bytes(), blk.RawData()))

	// ...but the operation references it via the CIDv1 form.
	target := cid.NewCidV1(cid.DagProtobuf, hash)

	out, err := ResolveRecord(target, buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestResolveRecord_NotFound(t *testing.T) {
	present := []byte("y")
	presentSum := sha256.Sum256(present)
	presentHash, err := mh.Encode(presentSum[:], mh.SHA2_256)
	require.NoError(t, err)
	presentCID := cid.NewCidV1(cid.Raw, presentHash)

	var buf bytes.Buffer
	header := &car.CarHeader{Roots: []cid.Cid{presentCID}, Version: 1}
	require.NoError(t, car.WriteHeader(header, &buf))
	require.NoError(t, carutil.LdWrite(&buf, presentCID.Bytes(), present))

	data := []byte("x")
	sum := sha256.Sum256(data)
	hash, err := mh.Encode(sum[:], mh.SHA2_256)
	require.NoError(t, err)
	missing := cid.NewCidV1(cid.Raw, hash)

	_, err = ResolveRecord(missing, buf.Bytes())
	require.ErrorIs(t, err, ErrItemNotFound)
}
