// Package delivery defines the contract every transport entrypoint satisfies.
package delivery

import "context"

// Delivery is one serving surface of the application, e.g. the HTTP API.
// Serve blocks until the server stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
