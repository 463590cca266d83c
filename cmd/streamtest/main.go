// streamtest connects to the push gateway and streams dispatched events
// to the console.
// Usage: go run ./cmd/streamtest --config configs/streamtest.example.yaml
//
// Required environment variables:
//
//	PULSEDESK_TOKEN - session token for the push gateway
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pulsedesk/realtime/internal/config"
	"github.com/pulsedesk/realtime/internal/database"
	"github.com/pulsedesk/realtime/internal/dispatch"
	"github.com/pulsedesk/realtime/internal/notify"
	"github.com/pulsedesk/realtime/internal/realtime"
	"github.com/pulsedesk/realtime/internal/session"
	"github.com/pulsedesk/realtime/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/streamtest.example.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full event JSON")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting streamtest",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	token := os.Getenv("PULSEDESK_TOKEN")
	if token == "" {
		logger.Error("PULSEDESK_TOKEN is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Optional persistence
	var recorder notify.Recorder
	if cfg.Database.Host != "" {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		recorder = database.NewNotificationRecorder(pool)
		logger.Info("notification persistence enabled", "host", cfg.Database.Host)
	}

	store := session.NewStore()

	client := realtime.NewClient(realtime.Config{
		URL:               cfg.Realtime.URL,
		BaseDelay:         cfg.Realtime.BaseDelay,
		MaxAttempts:       cfg.Realtime.MaxAttempts,
		HeartbeatInterval: cfg.Realtime.HeartbeatInterval,
		WriteTimeout:      cfg.Realtime.WriteTimeout,
		HandshakeTimeout:  cfg.Realtime.HandshakeTimeout,
	}, store, logger)

	feed := notify.NewStore(notify.StoreConfig{
		Channels:    cfg.Feed.Channels,
		RecentLimit: cfg.Feed.RecentLimit,
	}, client, recorder, logger)

	dispatcher := dispatch.NewDispatcher(logger)
	dispatcher.Handle(func(env dispatch.Envelope) {
		if *verbose {
			fmt.Printf("%s\n", env.Raw)
		} else {
			logger.Info("event", "type", env.Type)
		}
		feed.HandleEnvelope(env)
	})

	client.OnFrame(dispatcher)
	client.OnConnect(feed.HandleConnect)
	client.OnDisconnect(func() {
		st := client.State()
		logger.Info("connection state changed",
			"status", st.Status.String(),
			"attempt", st.ReconnectAttempt,
			"last_error", st.LastError,
		)
	})

	lifecycle := session.NewLifecycle(client, store, cfg.Realtime.AutoConnectEnabled(), logger)
	lifecycle.TokenAcquired(ctx, token)
	if !cfg.Realtime.AutoConnectEnabled() {
		client.Connect(ctx)
	}

	// Health endpoint
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Health.Path, func(w http.ResponseWriter, r *http.Request) {
		st := client.State()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":            st.Status.String(),
			"reconnect_attempt": st.ReconnectAttempt,
			"last_connected_at": st.LastConnectedAt,
			"last_error":        st.LastError,
			"queued":            client.QueueLen(),
			"dispatch":          dispatcher.Stats(),
			"unread":            feed.Unread(),
		})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: mux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting health server", "port", cfg.Health.Port, "path", cfg.Health.Path)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		client.Disconnect()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("streamtest stopped")
}
