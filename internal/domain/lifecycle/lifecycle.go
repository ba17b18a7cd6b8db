// Package lifecycle holds shared lifecycle constants for fx hooks.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown of servers, pollers and clients.
const DefaultTimeout = 10 * time.Second
