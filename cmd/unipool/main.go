package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unipool_backend/internal/app/service"
	"unipool_backend/internal/infrastructure/configloader"
	"unipool_backend/internal/infrastructure/httpclient"
	poolclient "unipool_backend/internal/infrastructure/network/client"
	networkdefinition "unipool_backend/internal/infrastructure/network/definition"
	"unipool_backend/internal/infrastructure/restapi"
	"unipool_backend/internal/pkg/logger"
	"unipool_backend/internal/pkg/scheduler"

	"go.uber.org/zap"
)

const defaultConfigPath = "config/config.yml"

func main() {
	configPath := defaultConfigPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	cfg, err := configloader.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	zapLogger, errLog := zap.NewProduction()
	if cfg.Logging.Level == "debug" {
		zapLogger, errLog = zap.NewDevelopment()
	}
	if errLog != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", errLog)
		os.Exit(1)
	}
	defer zapLogger.Sync() //nolint:errcheck // stdout sync errors are not actionable

	logger.InitZap(cfg.Logging.Level, zapLogger)
	logger.Info("Unipool backend starting...")
	logger.Info("Configuration loaded", "chain_id", cfg.Chain.ChainID, "refresh_interval_s", cfg.Refresh.IntervalSeconds)

	appLogger := logger.NewSlogAdapter()

	deploymentProvider := networkdefinition.NewDeploymentProvider(appLogger)
	clientProvider := poolclient.NewProvider(deploymentProvider, cfg, appLogger)

	coinGeckoClient := httpclient.NewCoinGeckoClient(
		cfg.CoinGecko.BaseURL,
		cfg.CoinGecko.APIKey,
		time.Duration(cfg.CoinGecko.RequestTimeoutMillis)*time.Millisecond,
		cfg.CoinGecko.MaxSymbolsPerRequest,
		zapLogger,
	)
	priceOracle := httpclient.NewCachedOracle(
		coinGeckoClient,
		time.Duration(cfg.CoinGecko.CacheTTLMinutes)*time.Minute,
		zapLogger,
	)
	logger.Info("CoinGecko price oracle initialized", "cache_ttl_min", cfg.CoinGecko.CacheTTLMinutes)

	portfolioService := service.NewPortfolioService(clientProvider, priceOracle, appLogger, cfg)
	logger.Info("PortfolioService initialized")

	refreshJob := service.NewRefreshJob(portfolioService, time.Duration(cfg.Refresh.IntervalSeconds)*time.Second)

	orchestrator := service.NewTransactionOrchestrator(clientProvider, appLogger, cfg, func() {
		// Refetch once a transaction confirms so derived figures match chain state.
		if err := refreshJob.Run(); err != nil {
			logger.Warn("Post-confirmation refresh failed", "error", err)
		}
	})
	logger.Info("TransactionOrchestrator initialized")

	jobScheduler := scheduler.New(appLogger)
	refreshSchedule := fmt.Sprintf("@every %ds", cfg.Refresh.IntervalSeconds)
	if err := jobScheduler.AddJob(refreshSchedule, refreshJob); err != nil {
		logger.Fatal("Failed to register refresh job", "error", err)
	}
	jobScheduler.Start()
	defer jobScheduler.Stop()

	// Prime the snapshot before serving; a failure here is not fatal, the
	// scheduled passes keep retrying.
	if err := jobScheduler.RunNow(refreshJob); err != nil {
		logger.Warn("Initial portfolio refresh failed", "error", err)
	}

	portfolioHandler := restapi.NewPortfolioHandler(portfolioService, cfg, appLogger)
	transactionHandler := restapi.NewTransactionHandler(orchestrator, appLogger)
	router := restapi.SetupRouter(cfg, portfolioHandler, transactionHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logger.Info("Shutdown signal received, stopping HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	} else {
		logger.Info("HTTP server stopped")
	}

	logger.Info("Unipool backend stopped")
}
