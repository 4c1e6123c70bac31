package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jovyan/kernelnav/pkg/config"
	"github.com/jovyan/kernelnav/pkg/envpath"
	"github.com/jovyan/kernelnav/pkg/gateway"
	"github.com/jovyan/kernelnav/pkg/kernelspec"
	"github.com/jovyan/kernelnav/pkg/runtime/logging"
	"github.com/jovyan/kernelnav/pkg/specwatch"
	"github.com/sirupsen/logrus"
)

var (
	configPath = flag.String("config", "", "Path to configuration file (default: ~/.kernelnav/config.yaml)")
	listenAddr = flag.String("addr", "", "Listen address override")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	log := logrus.New()
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	path := *configPath
	if path == "" {
		if p := config.DefaultConfigPath(); fileExists(p) {
			path = p
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *listenAddr != "" {
		cfg.Gateway.Address = *listenAddr
	}
	if *debug {
		cfg.Log.Level = "debug"
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	registry := kernelspec.NewRegistry(
		kernelspec.NewStandardProvider(cfg.Kernels.ExtraPaths...),
		&kernelspec.CondaProvider{Root: cfg.Kernels.CondaRoot},
	)
	registry.SetLogger(logger)

	resolver := envpath.NewResolver(nil)
	resolver.SetLogger(logger)

	gw := gateway.NewServer(cfg.Gateway.Address, registry, resolver,
		gateway.AllowlistAuthorizer{Allowed: cfg.Gateway.AllowedAddrs})
	gw.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Kernels.Watch {
		watcher := specwatch.New(append(kernelspec.DataDirs(), cfg.Kernels.ExtraPaths...))
		watcher.SetLogger(logger)
		gw.SetEventSource(watcher)
		go func() {
			if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("specwatch_stopped", "error", err)
			}
		}()
	}

	go func() {
		if err := gw.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("gateway error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	log.Infof("kernelnavd listening on %s", cfg.Gateway.Address)
	<-sigCh
	log.Info("shutdown signal received")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
