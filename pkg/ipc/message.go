// Package ipc implements the IPC Fabric (spec.md §4.B): N rendezvous
// slots connecting the front-end proxy to worker processes.
//
// The reference design maps one process-shared memory region carved
// into N fixed slots, each with a pair of named POSIX semaphores for
// zero-copy request/response rendezvous. Go has no portable
// process-shared semaphore in the standard library, and a literal
// shared-memory translation would fight the runtime's own scheduler.
// Two backends implement the same Fabric interface instead:
//
//   - ChannelFabric (default): slots are Go channels, the idiomatic
//     rendezvous primitive when proxy and workers are goroutines in one
//     process — the common case for this benchmark's single-binary
//     deployment.
//   - MangosFabric (build tag "nng"): slots are mangos PAIR sockets over
//     an ipc:// Unix-domain path, for the literal split proxy/worker
//     process deployment spec.md §2 also allows. Grounded on the pack's
//     nng_transport.go build-tagged socket wrappers.
//
// MangosFabric carries gob-encoded frames compressed with snappy,
// matching spec.md's emphasis on a tight, zero-copy-flavored wire path;
// ChannelFabric passes Request/Response values over its channels and
// encodes nothing.
package ipc

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/golang/snappy"

	"github.com/dd0wney/paymentgw/pkg/gateway"
	"github.com/dd0wney/paymentgw/pkg/pools"
	"github.com/dd0wney/paymentgw/pkg/store"
)

// MessageType tags the union carried in a slot, mirroring spec.md
// §3/§4.B's IpcMessage discriminator.
type MessageType uint8

const (
	// RequestPostPayment carries a fire-and-forget payment intake.
	RequestPostPayment MessageType = iota
	// RequestPaymentsSummary carries a synchronous summary query.
	RequestPaymentsSummary
	// RequestPurgePayments carries a synchronous purge broadcast.
	RequestPurgePayments
)

// Request is the payload written into a slot by the proxy.
type Request struct {
	Type              MessageType
	Gateway           gateway.Gateway
	Amount            float64
	CorrelationID     store.CorrelationID
	RequestedAtMillis int64
	From              *int64
	To                *int64
}

// Response is the payload a worker writes back for summary/purge
// requests. Post-payment requests have no response rendezvous
// (spec.md §4.B point 3).
type Response struct {
	Default  store.Summary
	Fallback store.Summary
	Err      string
}

// encodeFrame gob-encodes then snappy-compresses a value for the wire.
// The snappy destination comes from the shared byte pool: most request/
// response payloads land in the small-to-medium size classes, so this
// keeps steady-state intake from allocating a fresh compression buffer
// per message.
func encodeFrame(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("ipc: encode frame: %w", err)
	}
	dst := pools.GetBytesSized(snappy.MaxEncodedLen(buf.Len()))
	return snappy.Encode(dst, buf.Bytes()), nil
}

// decodeFrame reverses encodeFrame into v.
func decodeFrame(frame []byte, v any) error {
	dst := pools.GetBytes(len(frame) * 4)
	raw, err := snappy.Decode(dst, frame)
	if err != nil {
		return fmt.Errorf("ipc: decompress frame: %w", err)
	}
	defer pools.PutBytes(raw)
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return fmt.Errorf("ipc: decode frame: %w", err)
	}
	return nil
}
