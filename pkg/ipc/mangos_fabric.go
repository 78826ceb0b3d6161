//go:build nng
// +build nng

package ipc

import (
	"fmt"
	"sync"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pair"

	_ "go.nanomsg.org/mangos/v3/transport/ipc"
)

// MangosFabric implements Fabric over N mangos PAIR sockets, one per
// slot, each bound to its own ipc:// Unix-domain path — the literal
// multi-process form of spec.md §4.B's shared-memory slots, grounded on
// the pack's nng_transport.go socket wrappers.
type MangosFabric struct {
	sockets []mangos.Socket
	cursor  uint64
	mu      sync.Mutex
}

var _ Fabric = (*MangosFabric)(nil)

// slotPath builds the ipc:// address for one slot under baseDir.
func slotPath(baseDir string, slotID int) string {
	return fmt.Sprintf("ipc://%s/paymentgw-slot-%d.sock", baseDir, slotID)
}

// ListenMangosFabric creates n PAIR sockets bound to ipc:// paths under
// baseDir — call from the process that owns the worker side of every
// slot (the coordinator in a split proxy/worker deployment).
func ListenMangosFabric(baseDir string, n int) (*MangosFabric, error) {
	f := &MangosFabric{sockets: make([]mangos.Socket, n)}
	for i := 0; i < n; i++ {
		sock, err := pair.NewSocket()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("ipc: new pair socket for slot %d: %w", i, err)
		}
		if err := sock.Listen(slotPath(baseDir, i)); err != nil {
			f.Close()
			return nil, fmt.Errorf("ipc: listen slot %d: %w", i, err)
		}
		f.sockets[i] = sock
	}
	return f, nil
}

// DialMangosFabric dials n PAIR sockets at ipc:// paths under baseDir —
// call from the peer process that owns the proxy side of every slot.
func DialMangosFabric(baseDir string, n int) (*MangosFabric, error) {
	f := &MangosFabric{sockets: make([]mangos.Socket, n)}
	for i := 0; i < n; i++ {
		sock, err := pair.NewSocket()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("ipc: new pair socket for slot %d: %w", i, err)
		}
		if err := sock.Dial(slotPath(baseDir, i)); err != nil {
			f.Close()
			return nil, fmt.Errorf("ipc: dial slot %d: %w", i, err)
		}
		f.sockets[i] = sock
	}
	return f, nil
}

func (f *MangosFabric) Slots() int { return len(f.sockets) }

func (f *MangosFabric) NextSlot() int {
	f.mu.Lock()
	n := f.cursor
	f.cursor++
	f.mu.Unlock()
	return int(n % uint64(len(f.sockets)))
}

func (f *MangosFabric) Post(slotID int, req Request) error {
	frame, err := encodeFrame(req)
	if err != nil {
		return err
	}
	return f.sockets[slotID].Send(frame)
}

func (f *MangosFabric) Await(slotID int, req Request) (Response, error) {
	if err := f.Post(slotID, req); err != nil {
		return Response{}, err
	}
	frame, err := f.sockets[slotID].Recv()
	if err != nil {
		return Response{}, err
	}
	var resp Response
	if err := decodeFrame(frame, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

func (f *MangosFabric) Next(slotID int) (Request, error) {
	frame, err := f.sockets[slotID].Recv()
	if err != nil {
		return Request{}, err
	}
	var req Request
	if err := decodeFrame(frame, &req); err != nil {
		return Request{}, err
	}
	return req, nil
}

func (f *MangosFabric) Reply(slotID int, resp Response) error {
	frame, err := encodeFrame(resp)
	if err != nil {
		return err
	}
	return f.sockets[slotID].Send(frame)
}

func (f *MangosFabric) Close() error {
	var firstErr error
	for _, sock := range f.sockets {
		if sock == nil {
			continue
		}
		if err := sock.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
