package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaronzipp/brisk/internal/config"
	"github.com/aaronzipp/brisk/internal/handlers"
	"github.com/aaronzipp/brisk/internal/logging"
	"github.com/aaronzipp/brisk/internal/ruleset"
	"github.com/aaronzipp/brisk/internal/store"
	"github.com/aaronzipp/brisk/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "brisk:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	rules, err := loadRuleset(cfg.RulesetDir)
	if err != nil {
		return err
	}
	log.Info().
		Str("ruleset", rules.ID()).
		Int("territories", len(rules.Map.Territories)).
		Int("objectives", len(rules.Objectives.Objectives)).
		Msg("ruleset loaded")

	reg := store.NewRegistry(rules,
		store.WithTTL(cfg.InactiveTTL),
		store.WithLocale(cfg.Locale),
		store.WithLogger(log.With().Str("component", "registry").Logger()),
	)
	hub := ws.NewHub(log.With().Str("component", "ws").Logger(), rate.Limit(cfg.ActionRate), cfg.ActionBurst)

	gin.SetMode(cfg.GinMode)
	ctx := handlers.NewContext(reg, hub, cfg, log)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.NewRouter(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pruneLoop(sigCtx, reg, cfg.PruneInterval, log)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-sigCtx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// loadRuleset reads the ruleset from dir, or the embedded classic one when
// dir is empty.
func loadRuleset(dir string) (*ruleset.Ruleset, error) {
	if dir == "" {
		return ruleset.Default()
	}
	rules, err := ruleset.Load(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("load ruleset from %s: %w", dir, err)
	}
	return rules, nil
}

// pruneLoop drops expired rooms every interval until ctx is done.
func pruneLoop(ctx context.Context, reg *store.Registry, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := reg.PruneInactive(now); n > 0 {
				log.Info().Int("rooms", n).Msg("pruned inactive rooms")
			}
		}
	}
}
