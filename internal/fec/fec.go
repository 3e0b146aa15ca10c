// Package fec wraps Reed-Solomon forward error correction as an optional
// resilience layer a transfer session can place over its chunk stream:
// every K data shards produce R parity shards, and any R of the K+R total
// can be lost without losing the data.
package fec

import (
	"github.com/klauspost/reedsolomon"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// Encoder generates parity shards from a fixed K/R layout.
type Encoder struct {
	k, r int
	rs   reedsolomon.Encoder
}

// NewEncoder builds an encoder for k data shards and r parity shards,
// both of which must fall in [1, 256] — the range reedsolomon itself
// supports.
func NewEncoder(k, r int) (*Encoder, error) {
	if k < 1 || k > 256 {
		return nil, ferr.New(ferr.InvalidFormat, "fec: data shard count must be between 1 and 256")
	}
	if r < 1 || r > 256 {
		return nil, ferr.New(ferr.InvalidFormat, "fec: parity shard count must be between 1 and 256")
	}
	rs, err := reedsolomon.New(k, r)
	if err != nil {
		return nil, ferr.Wrap(ferr.IOFailed, "fec: reed-solomon encoder init failed", err)
	}
	return &Encoder{k: k, r: r, rs: rs}, nil
}

// Encode validates that dataShards has exactly K equally-sized shards and
// returns the R parity shards computed over them. The input shards are
// left untouched.
func (e *Encoder) Encode(dataShards [][]byte) ([][]byte, error) {
	if len(dataShards) != e.k {
		return nil, ferr.New(ferr.InvalidFormat, "fec: data shard count does not match encoder k")
	}

	var shardSize int
	if len(dataShards) > 0 {
		shardSize = len(dataShards[0])
		for _, shard := range dataShards {
			if len(shard) != shardSize {
				return nil, ferr.New(ferr.InvalidFormat, "fec: data shards are not equally sized")
			}
		}
	}

	parityShards := make([][]byte, e.r)
	for i := range parityShards {
		parityShards[i] = make([]byte, shardSize)
	}

	allShards := make([][]byte, e.k+e.r)
	copy(allShards[:e.k], dataShards)
	copy(allShards[e.k:], parityShards)

	if err := e.rs.Encode(allShards); err != nil {
		return nil, ferr.Wrap(ferr.IOFailed, "fec: encode failed", err)
	}
	return allShards[e.k:], nil
}

// Parameters returns the encoder's (k, r) layout.
func (e *Encoder) Parameters() (k, r int) { return e.k, e.r }

// Decoder reconstructs missing shards against a fixed K/R layout.
type Decoder struct {
	k, r int
	rs   reedsolomon.Encoder
}

// NewDecoder builds a decoder for the same k, r layout an Encoder used.
func NewDecoder(k, r int) (*Decoder, error) {
	if k < 1 || k > 256 {
		return nil, ferr.New(ferr.InvalidFormat, "fec: data shard count must be between 1 and 256")
	}
	if r < 1 || r > 256 {
		return nil, ferr.New(ferr.InvalidFormat, "fec: parity shard count must be between 1 and 256")
	}
	rs, err := reedsolomon.New(k, r)
	if err != nil {
		return nil, ferr.Wrap(ferr.IOFailed, "fec: reed-solomon decoder init failed", err)
	}
	return &Decoder{k: k, r: r, rs: rs}, nil
}

// Reconstruct fills in-place any nil shards of a K+R-length slice, as long
// as no more than R are missing.
func (d *Decoder) Reconstruct(shards [][]byte) error {
	if len(shards) != d.k+d.r {
		return ferr.New(ferr.InvalidFormat, "fec: shard count does not match decoder k+r")
	}

	missing := 0
	for _, shard := range shards {
		if shard == nil {
			missing++
		}
	}
	if missing > d.r {
		return ferr.New(ferr.InvalidFormat, "fec: too many missing shards to reconstruct")
	}
	if missing == 0 {
		return nil
	}

	if err := d.rs.Reconstruct(shards); err != nil {
		return ferr.Wrap(ferr.IOFailed, "fec: reconstruct failed", err)
	}
	return nil
}

// Parameters returns the decoder's (k, r) layout.
func (d *Decoder) Parameters() (k, r int) { return d.k, d.r }
