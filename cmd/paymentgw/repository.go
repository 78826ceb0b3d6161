//go:build !nng

package main

import (
	"fmt"

	"github.com/dd0wney/paymentgw/pkg/config"
	"github.com/dd0wney/paymentgw/pkg/store"
)

// openRepository opens the local KV environment. Building without the
// nng tag supports the coordinator (INSTANCE_ID=0) only: a non-coordinator
// replica needs the MangosFabric peer path in repository_nng.go.
func openRepository(cfg config.Config) (store.Interface, func() error, error) {
	if !cfg.Coordinator {
		return nil, nil, fmt.Errorf("paymentgw: non-coordinator replicas require building with -tags nng")
	}
	st, err := store.Open(cfg.Database, cfg.DatabaseSize, true)
	if err != nil {
		return nil, nil, err
	}
	return st.Repository(), st.Close, nil
}
