package medicalrecord

import "context"

// Repository reads records joined with their owner's names.
type Repository interface {
	GetByPersonID(ctx context.Context, personID int64) (*MedicalRecord, error)
	ListByPersonNames(ctx context.Context, firstName, lastName string) ([]*MedicalRecord, error)
	// ListByPersonIDs returns the records of the given persons keyed by ID.
	ListByPersonIDs(ctx context.Context, personIDs []int64) (map[int64]*MedicalRecord, error)
	ExistsByPersonID(ctx context.Context, personID int64) (bool, error)
	Create(ctx context.Context, m *MedicalRecord) error
	Update(ctx context.Context, m *MedicalRecord) error
	DeleteByPersonID(ctx context.Context, personID int64) (int64, error)
	DeleteByPersonNames(ctx context.Context, firstName, lastName string) (int64, error)
	Count(ctx context.Context) (int64, error)
}
