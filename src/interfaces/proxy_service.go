package interfaces

import (
	"context"

	"unblocker/src/models"
)

// -----------------------------------------------------------------------------
// IProxyService is the caller-facing side of the attempt sequencer, shared by
// the REST and gRPC front ends.
// -----------------------------------------------------------------------------

type IProxyService interface {

	// Unblock fetches target through mode ("auto" or a method id).
	// The response is non-nil whenever a request id was assigned.
	Unblock(ctx context.Context, target string, mode string) (*models.MUnblockResponse, error)

	// -----------------------------------------------------------------------------

	// Methods returns the enabled methods in attempt order.
	Methods() []models.MProxyMethod

	// -----------------------------------------------------------------------------

	FallbackSettings() models.MFallbackSettings

	// -----------------------------------------------------------------------------

	// History returns up to limit recent records, newest first.
	History(limit int) ([]models.MAttemptRecord, error)

	// -----------------------------------------------------------------------------

	// MethodStats reports per-method outcomes and latencies.
	MethodStats() []models.MMethodStats

	// -----------------------------------------------------------------------------

	Status() models.MServiceStatus
}
