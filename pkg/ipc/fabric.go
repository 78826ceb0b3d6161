package ipc

import "errors"

// ErrClosed is returned by fabric operations after Close.
var ErrClosed = errors.New("ipc: fabric closed")

// Fabric is the N-slot rendezvous abstraction spec.md §4.B describes.
// Each slot is single-producer/single-consumer per direction: one proxy
// IO thread posts requests, one worker consumes them.
type Fabric interface {
	// Slots reports N, the number of slots (== coordinator's workers
	// setting).
	Slots() int

	// NextSlot assigns a slot id by fetch-add modulo Slots(), the Go
	// analogue of spec.md §4.B's "fetch-add on a process-local atomic."
	NextSlot() int

	// Post writes a fire-and-forget request (RequestPostPayment) into
	// slotID and returns immediately once the worker has accepted it
	// for processing — it does not wait for a response.
	Post(slotID int, req Request) error

	// Await writes req into slotID and blocks for the worker's
	// response, for the synchronous summary/purge protocol.
	Await(slotID int, req Request) (Response, error)

	// Next blocks until a request is available on slotID, for a worker
	// pulling its next unit of work.
	Next(slotID int) (Request, error)

	// Reply delivers resp to whichever Await call is waiting on
	// slotID. Only valid after a Next that returned a synchronous
	// request type.
	Reply(slotID int, resp Response) error

	// Close releases all slots; blocked Next/Await calls return
	// ErrClosed.
	Close() error
}
