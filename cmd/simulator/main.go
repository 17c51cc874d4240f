package main

import (
	"arduinosim/internal/config"
	"arduinosim/internal/discovery"
	"arduinosim/internal/metrics"
	"arduinosim/internal/sensor"
	"arduinosim/internal/server"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []server.Option{
		server.WithLogger(log.Default()),
		server.WithMetrics(metrics.New(registry)),
	}
	if cfg.AccessLog {
		opts = append(opts, server.WithAccessLog(os.Stderr))
	}

	sim := server.New(sensor.New(), opts...)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           sim.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var advertiser *discovery.Advertiser
	if cfg.MDNS {
		advertiser, err = discovery.Advertise(cfg.Instance, cfg.Port, nil)
		if err != nil {
			log.Error("mDNS advertisement disabled", "err", err)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	errs := make(chan error, 1)

	go func() {
		log.Info("Starting simulator", "addr", cfg.Addr())
		sim.SetRunning(true)
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	code := 0
	select {
	case <-sig:
		log.Info("Exiting...")
	case err := <-errs:
		log.Error(err)
		code = 1
	}

	sim.SetRunning(false)
	if err := advertiser.Close(); err != nil {
		log.Error("Stop mDNS", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("Shutdown", "err", err)
		code = 1
	}

	signal.Stop(sig)
	os.Exit(code)
}
