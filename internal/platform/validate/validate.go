// Package validate holds the field rules applied to request bodies and query
// parameters before they reach the services.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/safetynet/alerts/internal/platform/apierror"
)

var (
	phonePattern      = regexp.MustCompile(`^[0-9]{3}-[0-9]{3}-[0-9]{4}$`)
	medicationPattern = regexp.MustCompile(`^[a-z]{1,32}:[1-9][0-9]{0,9}[km]?g$`)
	stationPattern    = regexp.MustCompile(`^[0-9]{1,10}$`)
	zipPattern        = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z -]{0,9}$`)
	emailPattern      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const (
	maxNameLen    = 64
	maxAddressLen = 128
	maxCityLen    = 64
	maxEmailLen   = 254
	maxAllergyLen = 64
)

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func text(param, v string, max int) error {
	if blank(v) {
		return apierror.Validation(param, "must not be blank")
	}
	if utf8.RuneCountInString(v) > max {
		return apierror.Validation(param, "size must be at most "+strconv.Itoa(max))
	}
	return nil
}

func pattern(param, v string, re *regexp.Regexp) error {
	if blank(v) {
		return apierror.Validation(param, "must not be blank")
	}
	if !re.MatchString(v) {
		return apierror.Validation(param, `must match "`+re.String()+`"`)
	}
	return nil
}

func Name(param, v string) error    { return text(param, v, maxNameLen) }
func Address(param, v string) error { return text(param, v, maxAddressLen) }
func City(param, v string) error    { return text(param, v, maxCityLen) }
func Allergy(param, v string) error { return text(param, v, maxAllergyLen) }

func Zip(param, v string) error        { return pattern(param, v, zipPattern) }
func Phone(param, v string) error      { return pattern(param, v, phonePattern) }
func Medication(param, v string) error { return pattern(param, v, medicationPattern) }
func Station(param, v string) error    { return pattern(param, v, stationPattern) }

func Email(param, v string) error {
	if err := text(param, v, maxEmailLen); err != nil {
		return err
	}
	return pattern(param, v, emailPattern)
}

// OptionalName validates v only when it was supplied.
func OptionalName(param, v string) error {
	if v == "" {
		return nil
	}
	return Name(param, v)
}

// NotNull reports a missing required value.
func NotNull(param string, present bool) error {
	if !present {
		return apierror.Validation(param, "must not be null")
	}
	return nil
}

// Each applies rule to every element, naming the failing index, e.g.
// "medications[1]".
func Each(param string, items []string, rule func(param, v string) error) error {
	for i, item := range items {
		if err := rule(param+"["+strconv.Itoa(i)+"]", item); err != nil {
			return err
		}
	}
	return nil
}

// Stations splits a comma separated list of station numbers. Empty entries
// are rejected.
func Stations(param, raw string) ([]string, error) {
	if blank(raw) {
		return nil, apierror.Validation(param, "must not be empty")
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if err := Station(param+"["+strconv.Itoa(i)+"]", p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
