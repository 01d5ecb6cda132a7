package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-multisig-keeper/internal/adapter"
	"github.com/MKhiriev/go-multisig-keeper/internal/config"
	"github.com/MKhiriev/go-multisig-keeper/internal/handler"
	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/server"
	"github.com/MKhiriev/go-multisig-keeper/internal/service"
	"github.com/MKhiriev/go-multisig-keeper/internal/store"
	"github.com/MKhiriev/go-multisig-keeper/internal/workers"
	"github.com/MKhiriev/go-multisig-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(buildInfo)

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("multisig-server", "info").Fatal().Err(err).Msg("error getting configs")
	}
	cfg.App.Build = buildInfo

	log := logger.NewLogger("multisig-server", cfg.Log.Level)
	log.Debug().Str("adapter_mode", cfg.Adapter.Mode).Str("http", cfg.Server.HTTPAddress).Str("grpc", cfg.Server.GRPCAddress).Msg("received configs")

	ctx := context.Background()

	storage, err := store.NewVaultStorage(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storage")
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Err(err).Msg("error closing storage")
		}
	}()

	ledger, err := adapter.NewLedgerAdapter(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating ledger adapter")
	}

	services, err := service.NewServices(storage, ledger, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	bg := workers.NewWorkers(
		workers.NewRefreshWorker(services.VaultService, cfg.Workers.RefreshInterval, log),
	)
	bg.Start(ctx)
	defer bg.Stop()

	// blocks until SIGINT, SIGTERM or SIGQUIT
	srv.RunServer()
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion)
	fmt.Printf("Build date: %s\n", info.BuildDate)
	fmt.Printf("Build commit: %s\n", info.BuildCommit)
}
