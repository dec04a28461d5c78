package main

import (
	"unblocker/src/config"
	"unblocker/src/interfaces"
	"unblocker/src/logger"
	"unblocker/src/models"
	"unblocker/src/network"
	"unblocker/src/sequencer"
	"unblocker/src/storage"
)

// -----------------------------------------------------------------------------

// setupDatabase initializes the database connection based on config
func setupDatabase(cfg *models.MConfig, appLogger *logger.Logger) (interfaces.IDatabase, error) {
	var db interfaces.IDatabase
	var err error

	switch cfg.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(cfg, appLogger.Named("PostgresDB"))
	default:
		// Default to SQLite
		db, err = storage.NewAsyncSQLiteDB(cfg, appLogger.Named("SQLiteDB"))
	}

	if err != nil {
		appLogger.Error("Failed to init db: %v", err)
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		appLogger.Error("Failed to migrate db: %v", err)
		return nil, err
	}
	return db, nil
}

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(cfg *models.MConfig, appLogger *logger.Logger) interfaces.INetworkManager {
	return network.NewAsyncNetworkManager(cfg, appLogger.Named("NetworkManager"))
}

// -----------------------------------------------------------------------------

// setupSequencer loads the proxy methods resource, falling back to the
// built-in list, and builds the sequencer over it
func setupSequencer(cfg *models.MConfig, net interfaces.INetworkManager, appLogger *logger.Logger) (*models.MProxyMethodsFile, *sequencer.Sequencer, error) {
	methods := config.ProxyMethodsOrDefault(cfg.Proxy.MethodsFile, appLogger)

	seq, err := sequencer.New(methods, net, appLogger.Named("Sequencer"))
	if err != nil {
		return nil, nil, err
	}

	for _, m := range seq.Methods() {
		appLogger.Info("Proxy method %s (%s) enabled", m.ID, m.Kind)
	}
	return methods, seq, nil
}
