// Package address stores the shared address records persons live at and
// firestations cover.
package address

import "github.com/safetynet/alerts/internal/platform/apierror"

// Address is keyed by its address string. City and Zip are nil on placeholder
// records created by a firestation assignment; Firestation is nil when no
// station covers the address.
type Address struct {
	ID          int64
	Address     string
	City        *string
	Zip         *string
	Firestation *string
}

// Complete reports whether both city and zip are known.
func (a *Address) Complete() bool {
	return a.City != nil && a.Zip != nil
}

func (a *Address) CityValue() string {
	if a.City == nil {
		return ""
	}
	return *a.City
}

func (a *Address) ZipValue() string {
	if a.Zip == nil {
		return ""
	}
	return *a.Zip
}

var (
	ErrNotFound    = apierror.NotFound("address not found")
	ErrInterfering = apierror.InterferingAddress("A matching address already exists with a different city/zip combination")
	ErrExists      = apierror.AlreadyExists("An address with this name already exists")
)
