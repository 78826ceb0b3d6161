package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dd0wney/paymentgw/pkg/pools"
)

// CorrelationIDLen is the fixed size of a CorrelationId: the client's
// UUID-shaped string, stored verbatim as bytes and never parsed
// (spec.md §3).
const CorrelationIDLen = 36

// CorrelationID is a fixed 36-byte opaque identifier.
type CorrelationID [CorrelationIDLen]byte

// ParseCorrelationID copies s into a CorrelationID, failing if the length
// does not match exactly. It does not validate UUID shape — the spec
// requires the bytes be stored verbatim, never parsed.
func ParseCorrelationID(s string) (CorrelationID, error) {
	var c CorrelationID
	if len(s) != CorrelationIDLen {
		return c, fmt.Errorf("store: correlation id must be %d bytes, got %d", CorrelationIDLen, len(s))
	}
	copy(c[:], s)
	return c, nil
}

func (c CorrelationID) String() string {
	return string(c[:])
}

// valueSize is the packed on-disk size of a StoredPayment value:
// 8 bytes amount + 36 bytes correlation id (spec.md §3).
const valueSize = 8 + CorrelationIDLen

// StoredPayment is the decoded form of one on-disk key/value record.
type StoredPayment struct {
	RequestedAtMillis int64
	Amount            float64
	CorrelationID     CorrelationID
}

// encodeKey produces the big-endian millisecond timestamp followed by a
// per-bucket monotonic sequence, so byte-wise comparison yields
// chronological order and multiple payments landing in the same
// millisecond remain distinct, ordered entries — the Go substitute for
// LMDB's DUPSORT|DUPFIXED duplicate-key feature (see SPEC_FULL.md §3.A).
//
// The 16-byte key is built on a pooled pkg/pools.BufferBuilder instead
// of a fresh make([]byte, 16): PostPayment runs on every intake
// request, and bbolt copies the slice into its own page during Put, so
// the caller releases the builder immediately afterward.
func encodeKey(millis int64, seq uint64) *pools.BufferBuilder {
	bb := pools.NewBufferBuilder(16)
	bb.WriteUint64BE(uint64(millis))
	bb.WriteUint64BE(seq)
	return bb
}

func decodeKeyMillis(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key[0:8]))
}

func encodeValue(amount float64, correlationID CorrelationID) *pools.BufferBuilder {
	bb := pools.NewBufferBuilder(valueSize)
	bb.WriteUint64BE(math.Float64bits(amount))
	bb.Write(correlationID[:])
	return bb
}

func decodeValue(key, val []byte) (StoredPayment, error) {
	if len(val) != valueSize {
		return StoredPayment{}, fmt.Errorf("store: corrupt value, want %d bytes, got %d", valueSize, len(val))
	}
	var p StoredPayment
	p.RequestedAtMillis = decodeKeyMillis(key)
	p.Amount = math.Float64frombits(binary.BigEndian.Uint64(val[0:8]))
	copy(p.CorrelationID[:], val[8:])
	return p, nil
}

// fromKeyMillis builds the lower-bound key for a range scan starting at
// the given millisecond (sequence 0, the smallest possible for that
// timestamp). The cursor Seek call that consumes it copies nothing, so
// the caller must keep the builder alive only until that call returns.
func fromKeyMillis(millis int64) *pools.BufferBuilder {
	return encodeKey(millis, 0)
}

// toKeyMillis returns the inclusive upper bound, in milliseconds, for a
// range scan ending at the given millisecond. No key is built: every
// sequence at that millisecond must be included, so the scan continues
// until a key's millis component exceeds this bound rather than
// comparing raw key bytes.
func toKeyMillis(millis int64) int64 {
	return millis
}
