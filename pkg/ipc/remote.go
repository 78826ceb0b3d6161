package ipc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dd0wney/paymentgw/pkg/gateway"
	"github.com/dd0wney/paymentgw/pkg/store"
)

// Remote implements store.Interface by forwarding every operation over
// a Fabric to the coordinator process, which owns the only bbolt
// environment (see pkg/store's package doc). Every non-coordinator
// replica's Payment Processor and API dispatcher use a Remote instead
// of opening the database file directly.
type Remote struct {
	fabric Fabric
	slotID int
}

var _ store.Interface = (*Remote)(nil)

// NewRemote claims one fabric slot for the lifetime of the returned
// Remote; all calls on it serialize through that slot.
func NewRemote(fabric Fabric) *Remote {
	return &Remote{fabric: fabric, slotID: fabric.NextSlot()}
}

func (r *Remote) PostPayment(g gateway.Gateway, amount float64, correlationID store.CorrelationID, requestedAtMillis int64) error {
	req := Request{
		Type:              RequestPostPayment,
		Gateway:           g,
		Amount:            amount,
		CorrelationID:     correlationID,
		RequestedAtMillis: requestedAtMillis,
	}
	return r.fabric.Post(r.slotID, req)
}

func (r *Remote) GetPaymentsSummary(g gateway.Gateway, from, to *int64) (store.Summary, error) {
	req := Request{Type: RequestPaymentsSummary, Gateway: g, From: from, To: to}
	resp, err := r.fabric.Await(r.slotID, req)
	if err != nil {
		return store.Summary{}, fmt.Errorf("ipc: remote summary: %w", err)
	}
	if resp.Err != "" {
		return store.Summary{}, errors.New(resp.Err)
	}
	if g == gateway.Fallback {
		return resp.Fallback, nil
	}
	return resp.Default, nil
}

func (r *Remote) Purge(g gateway.Gateway) error {
	req := Request{Type: RequestPurgePayments, Gateway: g}
	resp, err := r.fabric.Await(r.slotID, req)
	if err != nil {
		return fmt.Errorf("ipc: remote purge: %w", err)
	}
	if resp.Err != "" {
		return errors.New(resp.Err)
	}
	return nil
}

// ServeSlot runs on the coordinator: it pulls one request at a time off
// slotID, applies it to repo, and replies for the synchronous request
// types. It returns when the fabric is closed.
func ServeSlot(fabric Fabric, slotID int, repo store.Interface) error {
	for {
		req, err := fabric.Next(slotID)
		if err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}

		switch req.Type {
		case RequestPostPayment:
			// Fire-and-forget: spec.md §4.B point 3 — no response rendezvous.
			// The sending replica's Payment Processor already confirmed the
			// upstream 2xx; this call only persists the record.
			if err := repo.PostPayment(req.Gateway, req.Amount, req.CorrelationID, req.RequestedAtMillis); err != nil {
				slog.Error("ipc: remote postPayment failed", "error", err, "gateway", req.Gateway.String())
			}

		case RequestPaymentsSummary:
			var resp Response
			def, err := repo.GetPaymentsSummary(gateway.Default, req.From, req.To)
			if err != nil {
				resp.Err = err.Error()
			} else if fb, err := repo.GetPaymentsSummary(gateway.Fallback, req.From, req.To); err != nil {
				resp.Err = err.Error()
			} else {
				resp.Default = def
				resp.Fallback = fb
			}
			if err := fabric.Reply(slotID, resp); err != nil {
				return err
			}

		case RequestPurgePayments:
			var resp Response
			if err := repo.Purge(gateway.Default); err != nil {
				resp.Err = err.Error()
			} else if err := repo.Purge(gateway.Fallback); err != nil {
				resp.Err = err.Error()
			}
			if err := fabric.Reply(slotID, resp); err != nil {
				return err
			}
		}
	}
}
