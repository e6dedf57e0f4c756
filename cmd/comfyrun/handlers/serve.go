// Package handlers implements the CLI command logic: the serve daemon
// wiring and the client-side commands that render API responses.
package handlers

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/stdr"

	"github.com/comfyrun/comfyrun/internal/config"
	"github.com/comfyrun/comfyrun/internal/events"
	"github.com/comfyrun/comfyrun/internal/gpu"
	"github.com/comfyrun/comfyrun/internal/platform/runpod"
	"github.com/comfyrun/comfyrun/internal/pod"
	"github.com/comfyrun/comfyrun/internal/server"
)

// Serve wires up and runs the lifecycle daemon until interrupted.
func Serve(ctx context.Context, configPath string, verbosity int, version string) error {
	stdr.SetVerbosity(verbosity)
	log := stdr.New(stdlog.New(os.Stderr, "", stdlog.LstdFlags))

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	timeouts := config.LoadTimeouts()

	catalog := gpu.Default()
	if cfg.Pods.GPUCatalogFile != "" {
		catalog, err = gpu.LoadFile(cfg.Pods.GPUCatalogFile)
		if err != nil {
			return err
		}
		log.Info("loaded GPU catalog", "file", cfg.Pods.GPUCatalogFile, "entries", catalog.Len())
	}

	provider := runpod.NewRealClient(cfg.APIKey, runpod.WithBaseURL(cfg.BaseURL))
	hub := events.NewHub(log)
	mgr := pod.NewManager(provider, catalog, hub, log, pod.Options{
		Image:        cfg.Pods.Image,
		SetupTimeout: timeouts.SetupTimeout,
		PollInterval: timeouts.PollInterval,
		CostInterval: timeouts.CostInterval,
		ProbeTimeout: timeouts.ProbeTimeout,
	})
	defer mgr.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Adopt pods surviving from a previous run. A provider outage here must
	// not keep the daemon from starting.
	if err := mgr.Reconcile(ctx); err != nil {
		log.Error(err, "startup reconciliation failed, continuing with empty registry")
	}
	go mgr.Run(ctx)

	srv := server.New(mgr, hub, catalog, log, version, server.Options{
		Addr:            cfg.ListenAddr(),
		CORSOrigins:     cfg.Server.CORSOrigins,
		ShutdownTimeout: timeouts.HTTPShutdown,
	})
	return srv.Start(ctx)
}
