package ports

import "context"

// SchemaLoader defines how the engine retrieves node definitions.
// This allows the storage layer (Loam, Redis, files, memory) to be decoupled
// from schema compilation.
type SchemaLoader interface {
	// GetNode retrieves the raw JSON definition of a node by key.
	// Unknown keys return an error wrapping domain.ErrNodeNotFound.
	GetNode(key string) ([]byte, error)

	// ListNodes returns every key the loader can serve, in the order the
	// schema should be compiled. The first key is the default root.
	ListNodes() ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload of a schema while iterating on it.
type Watchable interface {
	// Watch returns a channel that receives the key of each changed node.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
