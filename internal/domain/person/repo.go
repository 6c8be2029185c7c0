package person

import "context"

// Repository lists are ordered by person ID.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Person, error)
	ListByNames(ctx context.Context, firstName, lastName string) ([]*Person, error)
	ExistsByNames(ctx context.Context, firstName, lastName string) (bool, error)
	ListByAddress(ctx context.Context, address string) ([]*Person, error)
	ListByFirestation(ctx context.Context, station string) ([]*Person, error)
	ListByCity(ctx context.Context, city string) ([]*Person, error)
	Create(ctx context.Context, p *Person) error
	Update(ctx context.Context, p *Person) error
	DeleteByID(ctx context.Context, id int64) (int64, error)
	DeleteByNames(ctx context.Context, firstName, lastName string) (int64, error)
	Count(ctx context.Context) (int64, error)
}
