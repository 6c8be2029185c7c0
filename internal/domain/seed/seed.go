// Package seed fills an empty store from a JSON document of persons,
// firestations and medical records.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/safetynet/alerts/internal/domain/address"
	"github.com/safetynet/alerts/internal/domain/firestation"
	"github.com/safetynet/alerts/internal/domain/medicalrecord"
	"github.com/safetynet/alerts/internal/domain/person"
	"github.com/safetynet/alerts/internal/platform/db"
	"github.com/safetynet/alerts/internal/platform/metrics"
)

//go:embed data.json
var defaultData []byte

// Document is the layout of the seed file.
type Document struct {
	Persons        []person.Person               `json:"persons"`
	Firestations   []firestation.Firestation     `json:"firestations"`
	MedicalRecords []medicalrecord.MedicalRecord `json:"medicalrecords"`
}

// Result counts the inserted entities. Skipped is set when the store already
// held data.
type Result struct {
	Skipped        bool
	Addresses      int
	Persons        int
	MedicalRecords int
}

type Loader struct {
	addresses address.Repository
	persons   person.Repository
	records   medicalrecord.Repository
	tx        db.Transactor
	metrics   *metrics.Metrics
}

// NewLoader builds a loader. m may be nil.
func NewLoader(addresses address.Repository, persons person.Repository, records medicalrecord.Repository, tx db.Transactor, m *metrics.Metrics) *Loader {
	return &Loader{addresses: addresses, persons: persons, records: records, tx: tx, metrics: m}
}

// ReadFile returns the document at path, or the embedded dataset when path is
// empty.
func ReadFile(path string) (*Document, error) {
	data := defaultData
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode seed document: %w", err)
	}
	return &doc, nil
}

// Load inserts doc in one transaction, only when the store holds no address
// and no person.
func (l *Loader) Load(ctx context.Context, doc *Document) (*Result, error) {
	res := &Result{}
	err := l.tx.InTx(ctx, func(ctx context.Context) error {
		empty, err := l.empty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			res.Skipped = true
			return nil
		}
		return l.insert(ctx, doc, res)
	})
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	if res.Skipped {
		logger.Info().Msg("store not empty, seed skipped")
		return res, nil
	}
	if l.metrics != nil {
		l.metrics.SeededEntities.WithLabelValues("address").Add(float64(res.Addresses))
		l.metrics.SeededEntities.WithLabelValues("person").Add(float64(res.Persons))
		l.metrics.SeededEntities.WithLabelValues("medical_record").Add(float64(res.MedicalRecords))
	}
	logger.Info().
		Int("addresses", res.Addresses).
		Int("persons", res.Persons).
		Int("medical_records", res.MedicalRecords).
		Msg("store seeded")
	return res, nil
}

func (l *Loader) empty(ctx context.Context) (bool, error) {
	n, err := l.addresses.Count(ctx)
	if err != nil || n > 0 {
		return false, err
	}
	n, err = l.persons.Count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

type names struct{ first, last string }

func (l *Loader) insert(ctx context.Context, doc *Document, res *Result) error {
	// The first resident of an address decides its city and zip.
	var order []string
	addrs := map[string]*address.Address{}
	for i := range doc.Persons {
		p := &doc.Persons[i]
		if _, ok := addrs[p.Address]; ok {
			continue
		}
		city, zip := p.City, p.Zip
		addrs[p.Address] = &address.Address{Address: p.Address, City: &city, Zip: &zip}
		order = append(order, p.Address)
	}

	for _, f := range doc.Firestations {
		a, ok := addrs[f.Address]
		if !ok {
			return fmt.Errorf("firestation references unknown address %q", f.Address)
		}
		station := f.Station
		a.Firestation = &station
	}

	for _, key := range order {
		if err := l.addresses.Create(ctx, addrs[key]); err != nil {
			return err
		}
		res.Addresses++
	}

	owners := map[names]*person.Person{}
	for i := range doc.Persons {
		p := doc.Persons[i]
		a := addrs[p.Address]
		p.ID = 0
		p.AddressID = a.ID
		p.City = a.CityValue()
		p.Zip = a.ZipValue()
		if err := l.persons.Create(ctx, &p); err != nil {
			return err
		}
		owners[names{p.FirstName, p.LastName}] = &p
		res.Persons++
	}

	for i := range doc.MedicalRecords {
		m := doc.MedicalRecords[i]
		owner, ok := owners[names{m.FirstName, m.LastName}]
		if !ok {
			return fmt.Errorf("medical record references unknown person %q %q", m.FirstName, m.LastName)
		}
		m.PersonID = owner.ID
		if m.Medications == nil {
			m.Medications = []string{}
		}
		if m.Allergies == nil {
			m.Allergies = []string{}
		}
		if err := l.records.Create(ctx, &m); err != nil {
			return err
		}
		res.MedicalRecords++
	}
	return nil
}
