package person

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/safetynet/alerts/internal/domain/address"
	"github.com/safetynet/alerts/internal/domain/identity"
	"github.com/safetynet/alerts/internal/platform/db"
)

// MedicalRecords is the part of the medical record store a person delete
// needs. Records are removed before their owner.
type MedicalRecords interface {
	DeleteByPersonID(ctx context.Context, personID int64) (int64, error)
	DeleteByPersonNames(ctx context.Context, firstName, lastName string) (int64, error)
}

type Service struct {
	persons   Repository
	addresses address.Repository
	records   MedicalRecords
	tx        db.Transactor
}

func NewService(persons Repository, addresses address.Repository, records MedicalRecords, tx db.Transactor) *Service {
	return &Service{persons: persons, addresses: addresses, records: records, tx: tx}
}

func (s *Service) GetPerson(ctx context.Context, id int64) (*Person, error) {
	return s.persons.GetByID(ctx, id)
}

// CreatePerson inserts body as a new person. Unless allowSimilarNames is set,
// an existing person with the same name pair makes it fail with ErrExists.
func (s *Service) CreatePerson(ctx context.Context, body *Person, allowSimilarNames bool) (*Outcome, error) {
	var out *Outcome
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.apply(ctx, nil, body, allowSimilarNames, true)
		return err
	})
	return out, err
}

// UpdatePerson replaces the person with the given ID. Renaming is allowed on
// this path, subject to the same similar-names rule as a create.
func (s *Service) UpdatePerson(ctx context.Context, id int64, body *Person, allowSimilarNames bool) (*Outcome, error) {
	var out *Outcome
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.persons.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out, err = s.apply(ctx, existing, body, allowSimilarNames, true)
		return err
	})
	return out, err
}

// UpdatePersonByNames replaces the only person carrying the name pair. The
// pair is the lookup key, so the body may not change it.
func (s *Service) UpdatePersonByNames(ctx context.Context, firstName, lastName string, body *Person) (*Outcome, error) {
	var out *Outcome
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		matches, err := s.persons.ListByNames(ctx, firstName, lastName)
		if err != nil {
			return err
		}
		existing, err := identity.One(matches, byNames)
		if err != nil {
			return err
		}
		out, err = s.apply(ctx, existing, body, false, false)
		return err
	})
	return out, err
}

// apply runs the update protocol against existing, or creates a person when
// existing is nil.
func (s *Service) apply(ctx context.Context, existing, body *Person, allowSimilarNames, allowRename bool) (*Outcome, error) {
	create := existing == nil
	renaming := !create && !existing.SameNames(body.FirstName, body.LastName)

	if renaming && !allowRename {
		return nil, ErrImmutableNames
	}
	if (create || renaming) && !allowSimilarNames {
		exists, err := s.persons.ExistsByNames(ctx, body.FirstName, body.LastName)
		if err != nil {
			return nil, err
		}
		if exists {
			zerolog.Ctx(ctx).Debug().
				Str("first_name", body.FirstName).
				Str("last_name", body.LastName).
				Msg("similar names rejected")
			return nil, ErrExists
		}
	}

	addr, err := address.Reconcile(ctx, s.addresses, body.Address, body.City, body.Zip)
	if err != nil {
		return nil, err
	}

	p := existing
	if create {
		p = &Person{}
	}
	p.FirstName = body.FirstName
	p.LastName = body.LastName
	p.AddressID = addr.ID
	p.Address = addr.Address
	p.City = addr.CityValue()
	p.Zip = addr.ZipValue()
	p.Phone = body.Phone
	p.Email = body.Email

	if create {
		err = s.persons.Create(ctx, p)
	} else {
		err = s.persons.Update(ctx, p)
	}
	if err != nil {
		return nil, err
	}
	return &Outcome{Created: create, Person: p}, nil
}

// DeletePerson removes the person and its medical record.
func (s *Service) DeletePerson(ctx context.Context, id int64) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.records.DeleteByPersonID(ctx, id); err != nil {
			return err
		}
		n, err := s.persons.DeleteByID(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeletePersonByNames removes the only person carrying the name pair. When
// several match, nothing is deleted.
func (s *Service) DeletePersonByNames(ctx context.Context, firstName, lastName string) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.records.DeleteByPersonNames(ctx, firstName, lastName); err != nil {
			return err
		}
		n, err := s.persons.DeleteByNames(ctx, firstName, lastName)
		if err != nil {
			return err
		}
		return identity.FromCount(n, byNames)
	})
}

// Count backs the actuator info endpoint.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.persons.Count(ctx)
}
