// Package identity classifies natural-key lookups. A name pair is only usable
// as a key when it matches exactly one record.
package identity

// Errors are the failures a caller reports for zero and for several matches.
type Errors struct {
	NotFound    error
	Interfering error
}

// One returns the single element of matches. No match yields NotFound; more
// than one yields Interfering, regardless of whether the matches differ.
func One[T any](matches []T, errs Errors) (T, error) {
	var zero T
	if err := FromCount(int64(len(matches)), errs); err != nil {
		return zero, err
	}
	return matches[0], nil
}

// FromCount applies the same rule to the row count of a delete by natural key.
func FromCount(n int64, errs Errors) error {
	switch {
	case n == 0:
		return errs.NotFound
	case n > 1:
		return errs.Interfering
	}
	return nil
}
