// Command paymentgw runs the payment intake proxy (spec.md §4): the
// Front-end Proxy, Pending Payments Queue, Gateway Chooser, and Payment
// Processor wired together into one running service.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/dd0wney/paymentgw/pkg/api"
	"github.com/dd0wney/paymentgw/pkg/api/middleware"
	"github.com/dd0wney/paymentgw/pkg/chooser"
	"github.com/dd0wney/paymentgw/pkg/config"
	"github.com/dd0wney/paymentgw/pkg/health"
	"github.com/dd0wney/paymentgw/pkg/metrics"
	"github.com/dd0wney/paymentgw/pkg/processor"
	"github.com/dd0wney/paymentgw/pkg/queue"
	"github.com/dd0wney/paymentgw/pkg/server"
)

// queueCapacity bounds the pending payments queue (spec.md §4.C); the
// oldest item is dropped once it is reached rather than blocking intake.
const queueCapacity = 10000

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	slog.Info("starting paymentgw",
		"instance_id", cfg.InstanceID, "coordinator", cfg.Coordinator,
		"workers", cfg.Workers, "listen_address", cfg.ListenAddress)

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		slog.Error("repository init failed", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	q := queue.New(queueCapacity)
	shared := chooser.NewShared()
	metricsRegistry := metrics.DefaultRegistry()

	var chooserLoop *chooser.Chooser
	if cfg.Coordinator {
		defClient := chooser.NewHealthClient("http://"+cfg.ProcessorDefaultAddress, 3*time.Second)
		fallbackClient := chooser.NewHealthClient("http://"+cfg.ProcessorFallbackAddress, 3*time.Second)
		chooserLoop = chooser.New(shared, defClient, fallbackClient, 5*time.Second, metricsRegistry)
		chooserLoop.Start()
		defer chooserLoop.Stop()
	}

	endpoints := processor.Endpoints{
		Default:  "http://" + cfg.ProcessorDefaultAddress,
		Fallback: "http://" + cfg.ProcessorFallbackAddress,
	}
	proc := processor.New(q, shared, repo, endpoints, cfg.HandlerWorkers, 10*time.Second, metricsRegistry)
	proc.Start()
	defer proc.Stop()

	healthChecker := health.NewHealthChecker()

	apiServer := api.NewServer(repo, q, shared, proc, chooserLoop, healthChecker, metricsRegistry, api.Config{
		Version:   "1.0.0",
		RateLimit: middleware.DefaultRateLimitConfig(),
	})

	graceful := server.NewGracefulServer(cfg.ListenAddress, apiServer)
	graceful.SetConfigReloadFunc(func() error {
		reloaded, err := config.Load()
		if err != nil {
			return err
		}
		slog.Info("configuration reloaded", "workers", reloaded.Workers)
		return nil
	})

	if err := graceful.Start(); err != nil {
		slog.Error("server error", "error", err)
		q.Close()
		os.Exit(1)
	}
	q.Close()
}
