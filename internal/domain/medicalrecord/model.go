// Package medicalrecord stores the one optional medical record of a person.
// A record shares its person's ID.
package medicalrecord

import (
	"github.com/safetynet/alerts/internal/domain/identity"
	"github.com/safetynet/alerts/internal/platform/apierror"
	"github.com/safetynet/alerts/internal/platform/validate"
)

type MedicalRecord struct {
	PersonID    int64    `db:"person_id" json:"personId,omitempty"`
	FirstName   string   `db:"first_name" json:"firstName,omitempty"`
	LastName    string   `db:"last_name" json:"lastName,omitempty"`
	Birthdate   *Date    `db:"birthdate" json:"birthdate,omitempty"`
	Medications []string `db:"medications" json:"medications"`
	Allergies   []string `db:"allergies" json:"allergies"`
}

// Validate checks a request body. The owner fields are optional; birthdate
// and both lists are required.
func (m *MedicalRecord) Validate() error {
	return validate.First(
		validate.OptionalName("firstName", m.FirstName),
		validate.OptionalName("lastName", m.LastName),
		validate.NotNull("birthdate", m.Birthdate != nil),
		validate.NotNull("medications", m.Medications != nil),
		validate.Each("medications", m.Medications, validate.Medication),
		validate.NotNull("allergies", m.Allergies != nil),
		validate.Each("allergies", m.Allergies, validate.Allergy),
	)
}

// Outcome is the result of a create or update.
type Outcome struct {
	Created       bool
	MedicalRecord *MedicalRecord
}

var (
	ErrNotFound       = apierror.NotFound("Medical record not found")
	ErrExists         = apierror.AlreadyExists("A medical record already exists for this person")
	ErrPersonNotFound = apierror.PersonNotFound("The person linked to this medical file cannot be found")
	ErrInterfering    = apierror.InterferingNames("Multiple medical records share this names combination, use ID instead")
)

var (
	byNames = identity.Errors{NotFound: ErrNotFound, Interfering: ErrInterfering}
	byOwner = identity.Errors{NotFound: ErrPersonNotFound, Interfering: ErrInterfering}
)
