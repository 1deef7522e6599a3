package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/majhol08/rtspscout/internal/api"
	"github.com/majhol08/rtspscout/internal/cache"
	"github.com/majhol08/rtspscout/internal/cameras"
	"github.com/majhol08/rtspscout/internal/catalog"
	"github.com/majhol08/rtspscout/internal/config"
	"github.com/majhol08/rtspscout/internal/discover"
	"github.com/majhol08/rtspscout/internal/events"
	"github.com/majhol08/rtspscout/internal/metrics"
	"github.com/majhol08/rtspscout/internal/probe"
	"github.com/majhol08/rtspscout/internal/scan"
	"github.com/majhol08/rtspscout/internal/stream"
	"github.com/majhol08/rtspscout/internal/tokens"
)

const memoTTL = 30 * time.Second

func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Vendor catalog with optional YAML overlay, hot-reloaded on change.
	catalogs := catalog.NewRegistry(cfg.Catalog.OverlayPath)
	if cfg.Catalog.OverlayPath != "" {
		if err := catalogs.Reload(); err != nil {
			log.Printf("Catalog overlay load error: %v", err)
		}
		catalogs.StartWatcher(ctx)
	}

	// Cache backend.
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = cache.NewRedisStore(rdb)
	default:
		store = cache.NewFileStore(cfg.Cache.Path)
	}
	configCache := cache.New(ctx, store)
	log.Printf("Cache loaded: %d entries (%s backend)", configCache.Len(), cfg.Cache.Backend)

	// Discovery pipeline.
	pinger := probe.NewTCPPinger(cfg.Scan.PingTimeout)
	fingerprinter := probe.NewMemoFingerprinter(
		probe.NewRTSPFingerprinter(cfg.Scan.FingerprintTimeout), probe.DefaultMemoKeys, memoTTL)
	validator := stream.NewValidator(cfg.Scan.WarmUp, cfg.Scan.ValidateTimeout)
	engine := discover.NewEngine(pinger, fingerprinter, validator, catalogs, discover.Options{
		AllowDefaultCredentials: cfg.Scan.AllowDefaultCreds,
		MaxDefaultCredentials:   cfg.Scan.MaxDefaultCreds,
	})

	registry := cameras.NewRegistry()
	collector := metrics.NewCollector()

	// NATS is optional; without a broker results still flow over HTTP and
	// the websocket feed.
	var publisher scan.Publisher
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			log.Printf("NATS connect error (events disabled): %v", err)
		} else {
			defer nc.Close()
			publisher = events.NewPublisher(nc, cfg.NATS.Subject, cfg.NATS.MaxRetries)
			log.Printf("NATS connected: %s", cfg.NATS.URL)
		}
	}

	manager := scan.NewManager(engine, registry, configCache, collector, publisher)

	hub := api.NewHub()
	defer hub.Close()
	manager.OnResult = hub.Broadcast

	var tokenMgr *tokens.Manager
	if cfg.JWTSigningKey != "" {
		tokenMgr = tokens.NewManager(cfg.JWTSigningKey)
	} else {
		log.Printf("JWT_SIGNING_KEY not set, API is unauthenticated")
	}

	handler := &api.Handler{
		Registry: registry,
		Manager:  manager,
		Engine:   engine,
		Cache:    configCache,
		Catalog:  catalogs,
		Metrics:  collector,
		Tokens:   tokenMgr,
		Hub:      hub,
		BaseCtx:  ctx,
	}

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler.Router(),
	}

	go func() {
		log.Printf("Starting server on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown error: %v", err)
	}
	configCache.Flush(shutdownCtx)
	log.Printf("Server stopped gracefully")
}
