package firehose

import (
	"bytes"
	"fmt"

	atproto "github.com/bluesky-social/indigo/api/atproto"
	"github.com/ipfs/go-cid"
)

// Commit is the decoded form of one "#commit" message body: the
// author's repo DID, the commit's own CID, the ops it contains, and the
// CAR-encoded block set those ops reference.
type Commit struct {
	DID string
	CID cid.Cid
	Ops []RawOp
	CAR []byte
}

// RawOp is a single repository mutation within a commit, carried
// unclassified. Action is one of "create", "update", "delete".
type RawOp struct {
	Path   string
	Action string
	CID    *cid.Cid // nil for deletes
}

// DecodeCommit deserialises a "#commit" frame body (DAG-CBOR) into a
// Commit. It reuses indigo's generated SyncSubscribeRepos_Commit wire
// type for the envelope, since that struct already matches the
// com.atproto.sync.subscribeRepos lexicon byte-for-byte; only the
// projection into our own flat Commit/RawOp shape is specified here.
func DecodeCommit(body []byte) (Commit, error) {
	var wire atproto.SyncSubscribeRepos_Commit
	if err := wire.UnmarshalCBOR(bytes.NewReader(body)); err != nil {
		return Commit{}, fmt.Errorf("firehose: decode commit envelope: %w", err)
	}

	commitCID, err := cid.Decode(wire.Commit.String())
	if err != nil {
		return Commit{}, fmt.Errorf("firehose: decode commit cid: %w", err)
	}

	ops := make([]RawOp, 0, len(wire.Ops))
	for _, op := range wire.Ops {
		var opCID *cid.Cid
		if op.Cid != nil {
			c, err := cid.Decode(op.Cid.String())
			if err != nil {
				return Commit{}, fmt.Errorf("firehose: decode op cid for %q: %w", op.Path, err)
			}
			opCID = &c
		}
		ops = append(ops, RawOp{Path: op.Path, Action: op.Action, CID: opCID})
	}

	return Commit{
		DID: wire.Repo,
		CID: commitCID,
		Ops: ops,
		CAR: wire.Blocks,
	}, nil
}
