package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/misrecon/internal/config"
	"github.com/MrJamesThe3rd/misrecon/internal/handoff"
	misreconHttp "github.com/MrJamesThe3rd/misrecon/internal/http"
	artifactHandler "github.com/MrJamesThe3rd/misrecon/internal/http/artifact"
	processHandler "github.com/MrJamesThe3rd/misrecon/internal/http/process"
	rulesHandler "github.com/MrJamesThe3rd/misrecon/internal/http/rules"
	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
	"github.com/MrJamesThe3rd/misrecon/internal/rules/source"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRules, err := source.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to load rules", "source", cfg.Rules.Source, "error", err)
		os.Exit(1)
	}
	defer closeRules()

	artifacts, err := handoff.New(cfg.Artifacts.Dir)
	if err != nil {
		slog.Error("failed to open artifact store", "dir", cfg.Artifacts.Dir, "error", err)
		os.Exit(1)
	}

	svc := pipeline.NewService(repo, logger, pipeline.WithStrictDates(cfg.Rules.StrictDates))

	var (
		processH  = processHandler.NewHandler(svc, artifacts, cfg.MaxUploadBytes())
		rulesH    = rulesHandler.NewHandler(repo)
		artifactH = artifactHandler.NewHandler(artifacts)
	)

	router := misreconHttp.New(processH, rulesH, artifactH, cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr, "rules", cfg.Rules.Source)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
