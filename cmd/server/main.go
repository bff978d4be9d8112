// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

// Tablescout server: loads configuration, opens the venue store, and serves
// the recommendation API until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/plateworks/tablescout/internal/api"
	"github.com/plateworks/tablescout/internal/config"
	"github.com/plateworks/tablescout/internal/hours"
	"github.com/plateworks/tablescout/internal/logging"
	"github.com/plateworks/tablescout/internal/recommend"
	"github.com/plateworks/tablescout/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tablescout: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging)
	logger.Info().
		Str("addr", cfg.Server.Addr()).
		Str("store", cfg.Store.Dir).
		Msg("starting tablescout")

	db, err := store.Open(cfg.Store.Dir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("closing store")
		}
	}()

	if cfg.Store.SeedPath != "" {
		if err := db.LoadSeed(cfg.Store.SeedPath); err != nil {
			return fmt.Errorf("seeding store: %w", err)
		}
	}

	resolver := hours.NewResolver(db, logger)
	builder := recommend.NewProfileBuilder(db, cfg.Recommend.Profile, logger)
	scorer := recommend.NewScorer(resolver, cfg.Recommend, logger)
	engine := recommend.NewEngine(builder, scorer, db, nil, cfg.Recommend, logger)

	handler := api.NewHandler(engine, resolver, logger)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimit:   cfg.Server.RateLimit,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info().Msg("stopped")
	return nil
}
