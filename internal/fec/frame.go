package fec

import (
	"encoding/binary"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// shardHeaderSize is the fixed-width prefix on every wire shard: which
// chunk and shard position it belongs to, and how long the original
// (pre-padding) frame was.
const shardHeaderSize = 4 + 1 + 4 + 4

// EncodeShard prepends a shardHeaderSize header to shard identifying the
// owning chunk index, this shard's position within that chunk's k+r set,
// and the original frame length before k-way padding.
func EncodeShard(chunkIndex uint32, shardIndex uint8, origLen uint32, shard []byte) []byte {
	out := make([]byte, shardHeaderSize+len(shard))
	binary.BigEndian.PutUint32(out[0:4], chunkIndex)
	out[4] = shardIndex
	binary.BigEndian.PutUint32(out[5:9], origLen)
	binary.BigEndian.PutUint32(out[9:13], uint32(len(shard)))
	copy(out[shardHeaderSize:], shard)
	return out
}

// DecodeShard parses a wire shard produced by EncodeShard.
func DecodeShard(wire []byte) (chunkIndex uint32, shardIndex uint8, origLen uint32, shard []byte, err error) {
	if len(wire) < shardHeaderSize {
		return 0, 0, 0, nil, ferr.New(ferr.InvalidFormat, "fec: shard shorter than header")
	}
	chunkIndex = binary.BigEndian.Uint32(wire[0:4])
	shardIndex = wire[4]
	origLen = binary.BigEndian.Uint32(wire[5:9])
	shardLen := binary.BigEndian.Uint32(wire[9:13])
	if shardHeaderSize+int(shardLen) > len(wire) {
		return 0, 0, 0, nil, ferr.New(ferr.InvalidFormat, "fec: shard payload length mismatch")
	}
	shard = wire[shardHeaderSize : shardHeaderSize+int(shardLen)]
	return chunkIndex, shardIndex, origLen, shard, nil
}

// SplitIntoShards divides data into k equal-length, zero-padded pieces
// ready for Encoder.Encode. The caller is expected to carry data's
// original length alongside (see EncodeShard's origLen) so a decoder can
// strip the padding back off after reconstruction.
func SplitIntoShards(data []byte, k int) [][]byte {
	shardSize := (len(data) + k - 1) / k
	if shardSize == 0 {
		shardSize = 1
	}
	shards := make([][]byte, k)
	for i := 0; i < k; i++ {
		shard := make([]byte, shardSize)
		start := i * shardSize
		if start < len(data) {
			copy(shard, data[start:min(start+shardSize, len(data))])
		}
		shards[i] = shard
	}
	return shards
}

// JoinShards concatenates the first k data shards and truncates the
// result back to origLen, undoing SplitIntoShards' padding.
func JoinShards(shards [][]byte, k int, origLen uint32) []byte {
	out := make([]byte, 0, origLen)
	for i := 0; i < k && uint32(len(out)) < origLen; i++ {
		out = append(out, shards[i]...)
	}
	if uint32(len(out)) > origLen {
		out = out[:origLen]
	}
	return out
}
