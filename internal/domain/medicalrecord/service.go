package medicalrecord

import (
	"context"
	"errors"

	"github.com/safetynet/alerts/internal/domain/identity"
	"github.com/safetynet/alerts/internal/domain/person"
	"github.com/safetynet/alerts/internal/platform/db"
)

// Owners is the part of the person store used to resolve a record's owner.
type Owners interface {
	GetByID(ctx context.Context, id int64) (*person.Person, error)
	ListByNames(ctx context.Context, firstName, lastName string) ([]*person.Person, error)
}

type Service struct {
	records Repository
	owners  Owners
	tx      db.Transactor
}

func NewService(records Repository, owners Owners, tx db.Transactor) *Service {
	return &Service{records: records, owners: owners, tx: tx}
}

func (s *Service) GetMedicalRecord(ctx context.Context, personID int64) (*MedicalRecord, error) {
	return s.records.GetByPersonID(ctx, personID)
}

// CreateMedicalRecord attaches a new record to the person designated by the
// body, through personId when set and the name pair otherwise. A person owns
// at most one record.
func (s *Service) CreateMedicalRecord(ctx context.Context, body *MedicalRecord) (*Outcome, error) {
	var out *Outcome
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		owner, err := s.owner(ctx, body)
		if err != nil {
			return err
		}
		exists, err := s.records.ExistsByPersonID(ctx, owner.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrExists
		}

		m := &MedicalRecord{PersonID: owner.ID, FirstName: owner.FirstName, LastName: owner.LastName}
		apply(m, body)
		if err := s.records.Create(ctx, m); err != nil {
			return err
		}
		out = &Outcome{Created: true, MedicalRecord: m}
		return nil
	})
	return out, err
}

// UpdateMedicalRecord replaces the content of the record with the given ID.
// Owner fields in the body are ignored.
func (s *Service) UpdateMedicalRecord(ctx context.Context, personID int64, body *MedicalRecord) (*Outcome, error) {
	var out *Outcome
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		m, err := s.records.GetByPersonID(ctx, personID)
		if err != nil {
			return err
		}
		out, err = s.update(ctx, m, body)
		return err
	})
	return out, err
}

// UpdateMedicalRecordByNames replaces the content of the only record whose
// owner carries the name pair.
func (s *Service) UpdateMedicalRecordByNames(ctx context.Context, firstName, lastName string, body *MedicalRecord) (*Outcome, error) {
	var out *Outcome
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		matches, err := s.records.ListByPersonNames(ctx, firstName, lastName)
		if err != nil {
			return err
		}
		m, err := identity.One(matches, byNames)
		if err != nil {
			return err
		}
		out, err = s.update(ctx, m, body)
		return err
	})
	return out, err
}

func (s *Service) update(ctx context.Context, m, body *MedicalRecord) (*Outcome, error) {
	apply(m, body)
	if err := s.records.Update(ctx, m); err != nil {
		return nil, err
	}
	return &Outcome{MedicalRecord: m}, nil
}

func (s *Service) DeleteMedicalRecord(ctx context.Context, personID int64) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := s.records.DeleteByPersonID(ctx, personID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteMedicalRecordByNames removes the only record whose owner carries the
// name pair. When several match, the delete is rolled back.
func (s *Service) DeleteMedicalRecordByNames(ctx context.Context, firstName, lastName string) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := s.records.DeleteByPersonNames(ctx, firstName, lastName)
		if err != nil {
			return err
		}
		return identity.FromCount(n, byNames)
	})
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.records.Count(ctx)
}

// owner resolves the person a new record belongs to.
func (s *Service) owner(ctx context.Context, body *MedicalRecord) (*person.Person, error) {
	switch {
	case body.PersonID != 0:
		p, err := s.owners.GetByID(ctx, body.PersonID)
		if errors.Is(err, person.ErrNotFound) {
			return nil, ErrPersonNotFound
		}
		return p, err
	case body.FirstName != "" && body.LastName != "":
		matches, err := s.owners.ListByNames(ctx, body.FirstName, body.LastName)
		if err != nil {
			return nil, err
		}
		return identity.One(matches, byOwner)
	}
	return nil, ErrPersonNotFound
}

func apply(m, body *MedicalRecord) {
	m.Birthdate = body.Birthdate
	m.Medications = nonNil(body.Medications)
	m.Allergies = nonNil(body.Allergies)
}
