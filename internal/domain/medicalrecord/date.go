package medicalrecord

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of birthdates, MM/dd/yyyy.
const DateLayout = "01/02/2006"

// Date is a calendar date without time of day, carried as midnight UTC.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: expected MM/dd/yyyy", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("birthdate must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// YearsUntil returns the number of whole years from d to the calendar date of
// now, as a birthday-based age.
func (d Date) YearsUntil(now time.Time) int {
	ny, nm, nd := now.Date()
	by, bm, bd := d.Date()
	years := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		years--
	}
	return years
}
