package interfaces

import "unblocker/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// RegisterMethods replaces the registry of configured proxy methods.
	RegisterMethods(methods []models.MProxyMethod) error

	// -----------------------------------------------------------------------------

	// SaveAttempt stores the summary of one sequencer run.
	SaveAttempt(record models.MAttemptRecord) error

	// -----------------------------------------------------------------------------

	// RecentAttempts returns up to limit records, newest first.
	RecentAttempts(limit int) ([]models.MAttemptRecord, error)

	// -----------------------------------------------------------------------------
	// Visitor statistics snapshot (single row)
	SaveVisitorStats(stats models.MVisitorStats) error

	// LoadVisitorStats returns nil without error when nothing was saved yet.
	LoadVisitorStats() (*models.MVisitorStats, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes attempts older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
