package store

import (
	"errors"
	"math"
	"os"

	"go.etcd.io/bbolt"

	"github.com/dd0wney/paymentgw/pkg/gateway"
)

// Summary is the (totalRequests, totalAmount) pair spec.md §3/§8 defines
// for one gateway over a time range.
type Summary struct {
	TotalRequests uint64
	TotalAmount   float64
}

// Interface is the contract the Payment Processor and the API dispatcher
// depend on. *Repository (bbolt-backed) satisfies it directly; pkg/ipc's
// Remote type satisfies it by forwarding to the owning process — see
// store.go's package doc.
type Interface interface {
	PostPayment(g gateway.Gateway, amount float64, correlationID CorrelationID, requestedAtMillis int64) error
	GetPaymentsSummary(g gateway.Gateway, from, to *int64) (Summary, error)
	Purge(g gateway.Gateway) error
}

// Repository implements Interface directly against a bbolt environment.
type Repository struct {
	db      *bbolt.DB
	maxSize int64
}

var _ Interface = (*Repository)(nil)

func bucketFor(g gateway.Gateway) ([]byte, error) {
	if !g.Valid() {
		return nil, ErrInvalidGateway
	}
	return bucketNames[g], nil
}

// PostPayment opens a short write transaction and inserts one record
// keyed by requestedAtMillis into the gateway's bucket (spec.md §4.A).
// Map-full is surfaced as ErrMapFull (non-fatal); any other engine error
// is wrapped in a *RepositoryError.
func (r *Repository) PostPayment(g gateway.Gateway, amount float64, correlationID CorrelationID, requestedAtMillis int64) error {
	name, err := bucketFor(g)
	if err != nil {
		return err
	}

	err = r.db.Update(func(tx *bbolt.Tx) error {
		// bbolt grows its mmap on demand rather than failing at a fixed
		// map size the way LMDB's MDB_MAP_FULL does, so DATABASE_SIZE is
		// enforced here instead, keeping the non-fatal map-full contract
		// spec.md §4.A describes.
		if r.maxSize > 0 && tx.Size() >= r.maxSize {
			return ErrMapFull
		}
		b := tx.Bucket(name)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		keyBuilder := encodeKey(requestedAtMillis, seq)
		defer keyBuilder.Release()
		valBuilder := encodeValue(amount, correlationID)
		defer valBuilder.Release()
		return b.Put(keyBuilder.Bytes(), valBuilder.Bytes())
	})
	if errors.Is(err, ErrMapFull) {
		return ErrMapFull
	}
	return wrapErr("PostPayment", g.String(), err)
}

// GetPaymentsSummary opens a read transaction and range-scans the
// gateway's bucket from `from` (or the first key) to `to` (or the last
// key) inclusive on both bounds, summing amounts and counting records
// (spec.md §4.A, §8).
func (r *Repository) GetPaymentsSummary(g gateway.Gateway, from, to *int64) (Summary, error) {
	name, err := bucketFor(g)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	err = r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(name)
		c := b.Cursor()

		var k, v []byte
		if from != nil {
			seekKey := fromKeyMillis(*from)
			k, v = c.Seek(seekKey.Bytes())
			seekKey.Release()
		} else {
			k, v = c.First()
		}

		for ; k != nil; k, v = c.Next() {
			millis := decodeKeyMillis(k)
			if to != nil && millis > toKeyMillis(*to) {
				break
			}
			payment, err := decodeValue(k, v)
			if err != nil {
				return err
			}
			summary.TotalRequests++
			summary.TotalAmount += payment.Amount
		}
		return nil
	})
	if err != nil {
		return Summary{}, wrapErr("GetPaymentsSummary", g.String(), err)
	}
	summary.TotalAmount = roundCents(summary.TotalAmount)
	return summary, nil
}

// Purge empties the gateway's bucket within one write transaction
// (spec.md §4.A): the bucket is deleted and recreated inside that same
// transaction, so callers never observe a missing bucket mid-purge.
func (r *Repository) Purge(g gateway.Gateway) error {
	name, err := bucketFor(g)
	if err != nil {
		return err
	}

	err = r.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(name); err != nil {
			return err
		}
		_, err := tx.CreateBucket(name)
		return err
	})
	return wrapErr("Purge", g.String(), err)
}

// roundCents rounds to exactly two fractional digits (spec.md §8: "Amount
// serialization uses exactly two fractional digits").
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Ping confirms the bbolt environment is still open and readable, for
// pkg/health's readiness DatabaseCheck.
func (r *Repository) Ping() error {
	return r.db.View(func(tx *bbolt.Tx) error { return nil })
}

// Size reports the on-disk file size against the configured DATABASE_SIZE
// ceiling, for pkg/health's DiskSpaceCheck — an early warning ahead of
// the ErrMapFull PostPayment returns once the database reaches it.
func (r *Repository) Size() (used, total uint64) {
	total = uint64(r.maxSize)
	fi, err := os.Stat(r.db.Path())
	if err != nil {
		return 0, total
	}
	return uint64(fi.Size()), total
}
