package address

import (
	"context"
	"errors"
)

// Reconcile returns the stored address a resident claims to live at.
//
// An unknown address is created with the claimed city and zip. A known but
// incomplete address adopts them. A complete address must already carry the
// same city and zip, otherwise ErrInterfering is returned and nothing is
// written. Submitting the same triple twice is a no-op.
func Reconcile(ctx context.Context, repo Repository, address, city, zip string) (*Address, error) {
	existing, err := repo.GetByAddress(ctx, address)
	if errors.Is(err, ErrNotFound) {
		a := &Address{Address: address, City: &city, Zip: &zip}
		if err := repo.Create(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	}
	if err != nil {
		return nil, err
	}

	if existing.Complete() {
		if *existing.City != city || *existing.Zip != zip {
			return nil, ErrInterfering
		}
		return existing, nil
	}

	existing.City = &city
	existing.Zip = &zip
	if err := repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}
