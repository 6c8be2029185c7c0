package person

import (
	"github.com/safetynet/alerts/internal/domain/identity"
	"github.com/safetynet/alerts/internal/platform/apierror"
	"github.com/safetynet/alerts/internal/platform/validate"
)

// Person maps to the persons table joined with its address. City and Zip are
// read from the address record.
type Person struct {
	ID        int64  `db:"id" json:"id,omitempty"`
	FirstName string `db:"first_name" json:"firstName,omitempty"`
	LastName  string `db:"last_name" json:"lastName,omitempty"`
	Address   string `db:"address" json:"address,omitempty"`
	City      string `db:"city" json:"city,omitempty"`
	Zip       string `db:"zip" json:"zip,omitempty"`
	Phone     string `db:"phone" json:"phone,omitempty"`
	Email     string `db:"email" json:"email,omitempty"`
	AddressID int64  `db:"address_id" json:"-"`
}

// SameNames reports whether p carries the given name pair.
func (p *Person) SameNames(firstName, lastName string) bool {
	return p.FirstName == firstName && p.LastName == lastName
}

// Validate checks a request body. Every field is required.
func (p *Person) Validate() error {
	return validate.First(
		validate.Name("firstName", p.FirstName),
		validate.Name("lastName", p.LastName),
		validate.Address("address", p.Address),
		validate.City("city", p.City),
		validate.Zip("zip", p.Zip),
		validate.Phone("phone", p.Phone),
		validate.Email("email", p.Email),
	)
}

// Outcome is the result of a create or update.
type Outcome struct {
	Created bool
	Person  *Person
}

var (
	ErrNotFound       = apierror.NotFound("Person not found")
	ErrExists         = apierror.AlreadyExists("A person with a similar names combination already exists")
	ErrImmutableNames = apierror.ImmutableNames("firstName and lastName cannot be updated in this context, use ID instead")
	ErrInterfering    = apierror.InterferingNames("Multiple persons share this names combination, use ID instead")
)

// byNames classifies a lookup by first and last name.
var byNames = identity.Errors{NotFound: ErrNotFound, Interfering: ErrInterfering}
