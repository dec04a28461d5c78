package interfaces

import "unblocker/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger pushes attempt progress to external listeners (WebSocket hub).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// Broadcast queues an event for every interested listener.
	// It must not block the caller for long.
	Broadcast(event models.MAttemptEvent)

	// -----------------------------------------------------------------------------
	// Start the exchanger loop
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the exchanger and disconnect listeners
	Stop() error
}
