package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for outbound HTTP fetches.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a single GET request to the specified URL.
	// The context carries the per-attempt deadline; there are no internal retries.
	Get(ctx context.Context, url string) ([]byte, error)
}
