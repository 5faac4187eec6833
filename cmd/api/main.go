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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sfdportal/portal/internal/assistant"
	"github.com/sfdportal/portal/internal/auth"
	"github.com/sfdportal/portal/internal/config"
	"github.com/sfdportal/portal/internal/geo"
	internalhttp "github.com/sfdportal/portal/internal/http"
	"github.com/sfdportal/portal/internal/repo"
	"github.com/sfdportal/portal/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	resources, err := repo.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer resources.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	accounts := service.NewAccountService(resources.Store, jwtManager, service.BootstrapOptions{
		AdminPassword:      cfg.Bootstrap.AdminPassword,
		SuperAdminPassword: cfg.Bootstrap.SuperAdminPassword,
	})
	if err := accounts.Bootstrap(ctx); err != nil {
		return err
	}

	helper, err := assistant.New(ctx, assistant.Config{
		APIKey:    cfg.Assistant.APIKey,
		Model:     cfg.Assistant.Model,
		ChatModel: cfg.Assistant.ChatModel,
		Timeout:   cfg.Assistant.Timeout,
	})
	if err != nil {
		return fmt.Errorf("assistant: %w", err)
	}
	defer helper.Close()

	geoCfg := geo.Config{BaseURL: cfg.Geo.BaseURL, CacheTTL: cfg.Geo.CacheTTL}
	var geoClient *geo.Client
	if resources.Redis != nil {
		geoClient = geo.New(geoCfg, resources.Redis)
	} else {
		geoClient = geo.New(geoCfg, nil)
	}

	handler := internalhttp.NewRouter(cfg, internalhttp.Dependencies{
		Store:     resources.Store,
		Accounts:  accounts,
		Content:   service.NewContentService(resources.Store),
		Geo:       geoClient,
		Assistant: helper,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
