package server

import "context"

// Server is a long-running network server tied to the application lifecycle.
type Server interface {
	// Start serves until the server is stopped or fails. It blocks.
	Start(ctx context.Context) error
	// Stop shuts the server down, waiting up to the context deadline for
	// in-flight requests to finish.
	Stop(ctx context.Context) error
}
