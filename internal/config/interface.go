package config

import "context"

// Loader is the interface for a format-specific variable file loader.
type Loader interface {
	// Load reads every variable file found at the given paths and merges them
	// into one model. A path may name a file or a directory.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
