package core

import "context"

// Adapter defines the interface for data source adapters.
// Every operation is scoped by a Query; bulk actions hand adapters the
// target query produced from the user's selection.
type Adapter interface {
	// Find returns the rows matching the query, honoring its pagination
	Find(ctx context.Context, resource *Resource, query *Query) (*Result, error)

	// Count returns the number of rows matching the query, ignoring pagination
	Count(ctx context.Context, resource *Resource, query *Query) (int64, error)

	// Update applies changes (field name -> value) to every row matching the query
	Update(ctx context.Context, resource *Resource, query *Query, changes map[string]any) (int64, error)

	// Delete removes every row matching the query atomically
	Delete(ctx context.Context, resource *Resource, query *Query) (int64, error)
}
