//go:build nng

package main

import (
	"log/slog"
	"path/filepath"

	"github.com/dd0wney/paymentgw/pkg/config"
	"github.com/dd0wney/paymentgw/pkg/ipc"
	"github.com/dd0wney/paymentgw/pkg/store"
)

// slotSocketDir is where every MangosFabric PAIR socket is bound, one
// per IPC slot, under the coordinator's own database directory.
func slotSocketDir(cfg config.Config) string {
	return filepath.Join(cfg.Database, "ipc")
}

// openRepository opens the local KV environment on the coordinator, or
// dials the coordinator's MangosFabric slots on any other replica — the
// literal multi-process form of spec.md §4.B's IPC Fabric.
func openRepository(cfg config.Config) (store.Interface, func() error, error) {
	if cfg.Coordinator {
		st, err := store.Open(cfg.Database, cfg.DatabaseSize, true)
		if err != nil {
			return nil, nil, err
		}

		fabric, err := ipc.ListenMangosFabric(slotSocketDir(cfg), cfg.Workers)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
		repo := st.Repository()
		for slot := 0; slot < cfg.Workers; slot++ {
			go func(slotID int) {
				if err := ipc.ServeSlot(fabric, slotID, repo); err != nil {
					slog.Error("ipc: slot server exited", "slot", slotID, "error", err)
				}
			}(slot)
		}

		return repo, func() error {
			fabric.Close()
			return st.Close()
		}, nil
	}

	fabric, err := ipc.DialMangosFabric(slotSocketDir(cfg), cfg.Workers)
	if err != nil {
		return nil, nil, err
	}
	remote := ipc.NewRemote(fabric)
	return remote, fabric.Close, nil
}
