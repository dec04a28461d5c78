package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unblocker/src/config"
	"unblocker/src/logger"
	"unblocker/src/server"
	"unblocker/src/service"
	"unblocker/src/stats"
)

const (
	cleanupInterval = time.Hour
	flushInterval   = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	// 1. Storage
	db, err := setupDatabase(conf.MConfig, appLogger)
	if err != nil {
		os.Exit(1)
	}
	defer db.Close()

	// 2. Network + sequencer
	networkManager := setupNetwork(conf.MConfig, appLogger)
	methods, seq, err := setupSequencer(conf.MConfig, networkManager, appLogger)
	if err != nil {
		appLogger.Critical("Failed to build sequencer: %v", err)
	}
	if err := db.RegisterMethods(methods.ProxyMethods); err != nil {
		appLogger.Warning("Failed to register proxy methods: %v", err)
	}

	// 3. Services
	hub := server.NewHub(appLogger.Named("Hub"))
	proxy := service.NewProxyService(seq, conf.Proxy.HistorySize, db, hub, appLogger.Named("ProxyService"))
	visitors := stats.NewVisitorStats(db, nil, appLogger.Named("VisitorStats"))

	// 4. Servers
	servers := startServers(conf, proxy, visitors, hub, appLogger)

	// 5. Housekeeping loop until a signal arrives
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()
	flush := time.NewTicker(flushInterval)
	defer flush.Stop()

	if err := db.CleanupOldData(); err != nil {
		appLogger.Warning("Initial cleanup failed: %v", err)
	}

	appLogger.Info("Unblocker ready with %d proxy methods", len(seq.Methods()))

	for {
		select {
		case <-cleanup.C:
			if err := db.CleanupOldData(); err != nil {
				appLogger.Error("Cleanup failed: %v", err)
			}

		case <-flush.C:
			if err := visitors.Flush(); err != nil {
				appLogger.Error("Failed to persist visitor stats: %v", err)
			}

		case <-quit:
			appLogger.Info("Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			servers.shutdown(ctx)
			cancel()

			if err := visitors.Flush(); err != nil {
				appLogger.Error("Failed to persist visitor stats: %v", err)
			}
			appLogger.Info("Shutdown complete.")
			return
		}
	}
}
