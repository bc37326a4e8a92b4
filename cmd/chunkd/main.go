// chunkd serves chunk generation and meshing over a websocket endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voxelforge/internal/config"
	"voxelforge/internal/profiling"
	"voxelforge/internal/store"
	"voxelforge/internal/transport/ws"
	"voxelforge/internal/worker"
)

func main() {
	var (
		addr       = flag.String("addr", "", "listen address (overrides config)")
		configPath = flag.String("config", "", "path to chunkd.yaml (empty for defaults)")
		cachePath  = flag.String("cache", "", "chunk cache sqlite path (overrides config, empty disables)")
		workers    = flag.Int("workers", 0, "workers per connection (overrides config)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[chunkd] ", log.LstdFlags|log.Lmicroseconds)
	slogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *cachePath != "" {
		cfg.CachePath = *cachePath
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	var cache ws.Cache
	if cfg.CachePath != "" {
		cs, err := store.Open(cfg.CachePath)
		if err != nil {
			logger.Fatalf("open chunk cache: %v", err)
		}
		defer cs.Close()
		cache = cs
		logger.Printf("chunk cache at %s", cfg.CachePath)
	}

	server := ws.NewServer(ws.Options{
		Workers: cfg.Workers,
		Worker: worker.Options{
			Worldgen:  cfg.Worldgen,
			QueueSize: cfg.QueueSize,
		},
		Cache:  cache,
		Logger: logger,
		Slog:   slogger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", server.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		fmt.Fprintln(rw, "ok")
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signalContext()
	defer cancel()
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (%d workers per connection)", cfg.ListenAddr, cfg.Workers)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	if summary := profiling.Summary(); summary != "" {
		logger.Printf("timings:\n%s", summary)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
