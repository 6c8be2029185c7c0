package medicalrecord

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/safetynet/alerts/internal/platform/db"
)

type medicalRecordRepoPG struct{ pool *pgxpool.Pool }

func NewMedicalRecordRepoPG(pool *pgxpool.Pool) Repository {
	return &medicalRecordRepoPG{pool: pool}
}

func (r *medicalRecordRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const recordSelect = `SELECT m.person_id, p.first_name, p.last_name, m.birthdate, m.medications, m.allergies
	FROM medical_records m JOIN persons p ON p.id = m.person_id`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	var birthdate *time.Time
	if err := row.Scan(&m.PersonID, &m.FirstName, &m.LastName, &birthdate, &m.Medications, &m.Allergies); err != nil {
		return nil, err
	}
	if birthdate != nil {
		m.Birthdate = &Date{birthdate.UTC()}
	}
	if m.Medications == nil {
		m.Medications = []string{}
	}
	if m.Allergies == nil {
		m.Allergies = []string{}
	}
	return &m, nil
}

func birthdateArg(m *MedicalRecord) *time.Time {
	if m.Birthdate == nil {
		return nil
	}
	t := m.Birthdate.Time
	return &t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *medicalRecordRepoPG) list(ctx context.Context, what, where string, args ...interface{}) ([]*MedicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, recordSelect+` WHERE `+where+` ORDER BY m.person_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list medical records by %s: %w", what, err)
	}
	defer rows.Close()

	var out []*MedicalRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medical record: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *medicalRecordRepoPG) GetByPersonID(ctx context.Context, personID int64) (*MedicalRecord, error) {
	m, err := scanRecord(r.conn(ctx).QueryRow(ctx, recordSelect+` WHERE m.person_id = $1`, personID))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get medical record: %w", err)
	}
	return m, nil
}

func (r *medicalRecordRepoPG) ListByPersonNames(ctx context.Context, firstName, lastName string) ([]*MedicalRecord, error) {
	return r.list(ctx, "names", `p.first_name = $1 AND p.last_name = $2`, firstName, lastName)
}

func (r *medicalRecordRepoPG) ListByPersonIDs(ctx context.Context, personIDs []int64) (map[int64]*MedicalRecord, error) {
	out := make(map[int64]*MedicalRecord, len(personIDs))
	if len(personIDs) == 0 {
		return out, nil
	}
	records, err := r.list(ctx, "person ids", `m.person_id = ANY($1)`, personIDs)
	if err != nil {
		return nil, err
	}
	for _, m := range records {
		out[m.PersonID] = m
	}
	return out, nil
}

func (r *medicalRecordRepoPG) ExistsByPersonID(ctx context.Context, personID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM medical_records WHERE person_id = $1)`, personID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check medical record: %w", err)
	}
	return exists, nil
}

func (r *medicalRecordRepoPG) Create(ctx context.Context, m *MedicalRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_records (person_id, birthdate, medications, allergies)
		VALUES ($1, $2, $3, $4)`,
		m.PersonID, birthdateArg(m), nonNil(m.Medications), nonNil(m.Allergies))
	if db.IsUniqueViolation(err) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("insert medical record: %w", err)
	}
	return nil
}

func (r *medicalRecordRepoPG) Update(ctx context.Context, m *MedicalRecord) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_records SET birthdate = $2, medications = $3, allergies = $4
		WHERE person_id = $1`,
		m.PersonID, birthdateArg(m), nonNil(m.Medications), nonNil(m.Allergies))
	if err != nil {
		return fmt.Errorf("update medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicalRecordRepoPG) DeleteByPersonID(ctx context.Context, personID int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_records WHERE person_id = $1`, personID)
	if err != nil {
		return 0, fmt.Errorf("delete medical record: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *medicalRecordRepoPG) DeleteByPersonNames(ctx context.Context, firstName, lastName string) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM medical_records m USING persons p
		WHERE p.id = m.person_id AND p.first_name = $1 AND p.last_name = $2`,
		firstName, lastName)
	if err != nil {
		return 0, fmt.Errorf("delete medical records by names: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *medicalRecordRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count medical records: %w", err)
	}
	return n, nil
}
