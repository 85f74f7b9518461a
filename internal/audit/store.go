package audit

import "context"

// Store persists audit events. Append-only: there is no update or delete.
type Store interface {
	Append(ctx context.Context, event *Event) error
	List(ctx context.Context, filters Filters) ([]*Event, error)
	Stats(ctx context.Context) (*Stats, error)
}
