package address

import "context"

type Repository interface {
	// GetByAddress returns ErrNotFound when the address is unknown.
	GetByAddress(ctx context.Context, address string) (*Address, error)
	// ListByFirestations returns the addresses covered by any of stations,
	// in insertion order.
	ListByFirestations(ctx context.Context, stations []string) ([]*Address, error)
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Count(ctx context.Context) (int64, error)
}
