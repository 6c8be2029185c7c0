// Package firestation exposes the station assignment of an address as its own
// resource. A firestation has no table of its own: it is the firestation
// column of an address record.
package firestation

import (
	"github.com/safetynet/alerts/internal/domain/address"
	"github.com/safetynet/alerts/internal/platform/apierror"
	"github.com/safetynet/alerts/internal/platform/validate"
)

type Firestation struct {
	Address string `json:"address,omitempty"`
	Station string `json:"station,omitempty"`
}

func (f *Firestation) Validate() error {
	return validate.First(
		validate.Address("address", f.Address),
		validate.Station("station", f.Station),
	)
}

// Outcome is the result of a create or update.
type Outcome struct {
	Created     bool
	Firestation *Firestation
}

var ErrImmutableAddress = apierror.ImmutableAddress("address cannot be updated")

// fromAddress returns nil for an address no station covers.
func fromAddress(a *address.Address) *Firestation {
	if a == nil || a.Firestation == nil {
		return nil
	}
	return &Firestation{Address: a.Address, Station: *a.Firestation}
}
