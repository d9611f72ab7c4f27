package firehose

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
	car "github.com/ipld/go-car"
)

// carBlock is one decoded (CID, bytes) pair out of a commit's CAR
// archive.
type carBlock struct {
	cid  cid.Cid
	data []byte
}

// decodeCAR walks every block out of a CAR v1 archive. The roots listed
// in the CAR header are not treated specially here — the CAR resolver
// only ever needs individual blocks by CID.
func decodeCAR(carBytes []byte) ([]carBlock, error) {
	reader, err := car.NewCarReader(bytes.NewReader(carBytes))
	if err != nil {
		return nil, fmt.Errorf("firehose: open car: %w", err)
	}

	var blocks []carBlock
	for {
		blk, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firehose: read car block: %w", err)
		}
		blocks = append(blocks, carBlock{cid: blk.Cid(), data: blk.RawData()})
	}
	return blocks, nil
}

// normalizeCID collapses a CID down to its version-independent identity:
// same multicodec, same multihash, always expressed as CIDv1. This is
// the bridge that tolerates two CID-library versions (or a CIDv0/CIDv1
// pair referring to the same content) disagreeing about string form.
func normalizeCID(c cid.Cid) cid.Cid {
	return cid.NewCidV1(c.Prefix().Codec, c.Hash())
}

// cidsEqual reports whether a and b refer to the same block, tolerant
// of CID version drift (see normalizeCID).
func cidsEqual(a, b cid.Cid) bool {
	return normalizeCID(a).Equals(normalizeCID(b))
}

// ResolveRecord returns the raw DAG-CBOR bytes of the record referenced
// by target within the given commit's CAR-encoded block set. Returns
// ErrItemNotFound if no block matches, tolerant of CID version drift.
func ResolveRecord(target cid.Cid, carBytes []byte) ([]byte, error) {
	blocks, err := decodeCAR(carBytes)
	if err != nil {
		return nil, err
	}
	for _, blk := range blocks {
		if cidsEqual(blk.cid, target) {
			return blk.data, nil
		}
	}
	return nil, ErrItemNotFound
}
