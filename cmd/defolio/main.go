package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"defolio/internal/app/port"
	"defolio/internal/app/service"
	"defolio/internal/domain/entity"
	"defolio/internal/infrastructure/chainregistry"
	"defolio/internal/infrastructure/configloader"
	"defolio/internal/infrastructure/history"
	"defolio/internal/infrastructure/nameresolver"
	"defolio/internal/infrastructure/network/client"
	"defolio/internal/infrastructure/priceoracle"
	"defolio/internal/infrastructure/restapi"
	"defolio/internal/pkg/logger"
	"defolio/internal/protocols"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yml", "path to the YAML config file")
	flag.Parse()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	var cfg *configloader.Config
	if _, statErr := os.Stat(*configPath); statErr == nil {
		cfg, err = configloader.Load(*configPath)
		if err != nil {
			zapLogger.Fatal("failed to load configuration", zap.String("path", *configPath), zap.Error(err))
		}
	} else {
		zapLogger.Warn("config file not found, using defaults", zap.String("path", *configPath))
		cfg = configloader.Default()
	}

	// Route slog through zap so every package logs into one pipeline.
	slogHandler := slogzap.Option{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Logger: zapLogger,
	}.NewZapHandler()
	logger.InitWithHandler(slogHandler)
	log := logger.NewSlogAdapter()

	log.Info("defolio starting", "config", *configPath, "level", cfg.Logging.Level)

	dialer := client.NewDialer(
		time.Duration(cfg.RPC.ConnectTimeoutSeconds)*time.Second,
		time.Duration(cfg.RPC.CallTimeoutSeconds)*time.Second,
	)
	chains := chainregistry.New(dialer, log)
	for _, chainCfg := range chainregistry.DefaultChainConfigs() {
		chains.RegisterChain(chainCfg)
	}
	for _, chainCfg := range cfg.Chains {
		chains.RegisterChain(chainCfg)
	}

	var evmChains []entity.ChainID
	for _, chainID := range chains.ChainIDs() {
		if chainCfg, ok := chains.Config(chainID); ok && chainCfg.Kind == entity.KindEVM {
			evmChains = append(evmChains, chainID)
		}
	}

	adapters := protocols.NewRegistry()
	adapters.Register(protocols.NewWalletAdapter(evmChains))
	adapters.Register(protocols.NewAaveV3Adapter())
	adapters.Register(protocols.NewLidoAdapter())
	adapters.Register(protocols.NewSolanaWalletAdapter())

	pairClient := priceoracle.NewDEXScreenerClient(
		cfg.PriceOracle.BaseURL,
		time.Duration(cfg.PriceOracle.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)
	oracle := priceoracle.New(pairClient, chains, zapLogger, priceoracle.Options{
		CacheTTL:          time.Duration(cfg.PriceOracle.CacheTTLMinutes) * time.Minute,
		RequestsPerSecond: cfg.PriceOracle.RequestsPerSecond,
	})

	snapshots := history.NewStore(cfg.History.MaxSnapshotsPerAddress)
	resolver := nameresolver.New(chains)

	failover := port.FailoverOptions{MaxRetries: cfg.RPC.MaxRetries}
	aggregator := service.NewAggregatorService(chains, adapters, oracle, snapshots, log, cfg.Performance.MaxConcurrentChains, failover)
	yields := service.NewYieldService(chains, adapters, log, cfg.Performance.MaxConcurrentChains, failover)

	handler := restapi.NewPortfolioHandler(aggregator, yields, resolver, snapshots, chains, log)
	router := restapi.SetupRouter(handler)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("defolio stopped")
}
