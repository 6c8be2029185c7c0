// Package alerts computes the read-only emergency views that join persons,
// their addresses and their medical records.
package alerts

import (
	"encoding/json"
	"time"

	"github.com/safetynet/alerts/internal/domain/medicalrecord"
	"github.com/safetynet/alerts/internal/domain/person"
)

// AdultAge is the age from which a person counts as an adult.
const AdultAge = 18

// Person is a resident as shown by the alert views. Birthdate and Age are set
// when the person has a medical record; the lists only on views that expose
// medical detail. A nil list is left out of the JSON, an empty one is kept.
type Person struct {
	ID          int64               `json:"id,omitempty"`
	FirstName   string              `json:"firstName,omitempty"`
	LastName    string              `json:"lastName,omitempty"`
	Address     string              `json:"address,omitempty"`
	City        string              `json:"city,omitempty"`
	Zip         string              `json:"zip,omitempty"`
	Phone       string              `json:"phone,omitempty"`
	Email       string              `json:"email,omitempty"`
	Birthdate   *medicalrecord.Date `json:"birthdate,omitempty"`
	Age         *int                `json:"age,omitempty"`
	Medications []string            `json:"medications"`
	Allergies   []string            `json:"allergies"`
}

func (p *Person) MarshalJSON() ([]byte, error) {
	type plain Person
	out := struct {
		*plain
		Medications *[]string `json:"medications,omitempty"`
		Allergies   *[]string `json:"allergies,omitempty"`
	}{plain: (*plain)(p)}
	if p.Medications != nil {
		out.Medications = &p.Medications
	}
	if p.Allergies != nil {
		out.Allergies = &p.Allergies
	}
	return json.Marshal(out)
}

// IsAdult treats a person of unknown age as an adult.
func (p *Person) IsAdult() bool {
	return p.Age == nil || *p.Age >= AdultAge
}

// complete builds the view of p at now. record may be nil.
func complete(p *person.Person, record *medicalrecord.MedicalRecord, now time.Time, withMedical bool) *Person {
	out := &Person{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Address:   p.Address,
		City:      p.City,
		Zip:       p.Zip,
		Phone:     p.Phone,
		Email:     p.Email,
	}
	if record == nil {
		return out
	}
	if record.Birthdate != nil {
		age := record.Birthdate.YearsUntil(now)
		out.Birthdate = record.Birthdate
		out.Age = &age
	}
	if withMedical {
		out.Medications = append([]string{}, record.Medications...)
		out.Allergies = append([]string{}, record.Allergies...)
	}
	return out
}

type PersonsCoveredByFirestation struct {
	ChildrenCount int       `json:"childrenCount"`
	AdultsCount   int       `json:"adultsCount"`
	Persons       []*Person `json:"persons"`
}

type ChildAlert struct {
	Children []*Person `json:"children"`
	Adults   []*Person `json:"adults"`
}

type PhoneAlert struct {
	Phones []string `json:"phones"`
}

type Fire struct {
	StationNumber *string   `json:"stationNumber,omitempty"`
	Persons       []*Person `json:"persons"`
}

type FloodStations struct {
	Stations []*FloodEntry `json:"stations"`
}

// FloodEntry groups the residents of one covered address.
type FloodEntry struct {
	Address string    `json:"address"`
	Persons []*Person `json:"persons"`
}

type PersonInfo struct {
	Persons []*Person `json:"persons"`
}

type CommunityEmail struct {
	Emails []string `json:"emails"`
}
