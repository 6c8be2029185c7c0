// Package memstore is an in-memory implementation of the address, person and
// medical record repositories for service and handler tests. Its transactor
// restores a snapshot when the unit of work fails, like a rollback.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/safetynet/alerts/internal/domain/address"
	"github.com/safetynet/alerts/internal/domain/medicalrecord"
	"github.com/safetynet/alerts/internal/domain/person"
)

type personRow struct {
	id        int64
	firstName string
	lastName  string
	addressID int64
	phone     string
	email     string
}

type recordRow struct {
	birthdate   *medicalrecord.Date
	medications []string
	allergies   []string
}

type state struct {
	addresses  map[int64]address.Address
	persons    map[int64]personRow
	records    map[int64]recordRow
	nextAddr   int64
	nextPerson int64
}

func (s state) clone() state {
	c := state{
		addresses:  make(map[int64]address.Address, len(s.addresses)),
		persons:    make(map[int64]personRow, len(s.persons)),
		records:    make(map[int64]recordRow, len(s.records)),
		nextAddr:   s.nextAddr,
		nextPerson: s.nextPerson,
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	for k, v := range s.persons {
		c.persons[k] = v
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	return c
}

// Store holds the three collections. mu guards st; tx is held for the whole
// unit of work, exclusively by InTx and shared by InReadTx, so a rollback
// never discards another transaction's writes.
type Store struct {
	tx       sync.RWMutex
	mu       sync.Mutex
	st       state
	failures map[string]error
}

func New() *Store {
	return &Store{st: state{}.clone(), failures: map[string]error{}}
}

// FailOn makes the named operation, e.g. "persons.Create", return err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) fail(op string) error {
	return s.failures[op]
}

func (s *Store) Addresses() address.Repository     { return addressRepo{s} }
func (s *Store) Persons() person.Repository        { return personRepo{s} }
func (s *Store) Records() medicalrecord.Repository { return recordRepo{s} }

// InTx runs fn and restores the previous state when it fails. Units of work
// run one at a time; fn must not open another transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.tx.Lock()
	defer s.tx.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) InReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.tx.RLock()
	defer s.tx.RUnlock()
	return fn(ctx)
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func copyStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string{}, in...)
}

// addresses

type addressRepo struct{ s *Store }

func (r addressRepo) GetByAddress(_ context.Context, addr string) (*address.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("addresses.GetByAddress"); err != nil {
		return nil, err
	}
	for _, id := range sortedIDs(r.s.st.addresses) {
		a := r.s.st.addresses[id]
		if a.Address == addr {
			return &a, nil
		}
	}
	return nil, address.ErrNotFound
}

func (r addressRepo) ListByFirestations(_ context.Context, stations []string) ([]*address.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := map[string]bool{}
	for _, st := range stations {
		want[st] = true
	}
	var out []*address.Address
	for _, id := range sortedIDs(r.s.st.addresses) {
		a := r.s.st.addresses[id]
		if a.Firestation != nil && want[*a.Firestation] {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r addressRepo) Create(_ context.Context, a *address.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("addresses.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.st.addresses {
		if existing.Address == a.Address {
			return address.ErrExists
		}
	}
	r.s.st.nextAddr++
	a.ID = r.s.st.nextAddr
	r.s.st.addresses[a.ID] = *a
	return nil
}

func (r addressRepo) Update(_ context.Context, a *address.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("addresses.Update"); err != nil {
		return err
	}
	if _, ok := r.s.st.addresses[a.ID]; !ok {
		return address.ErrNotFound
	}
	r.s.st.addresses[a.ID] = *a
	return nil
}

func (r addressRepo) Count(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.st.addresses)), nil
}

// persons

type personRepo struct{ s *Store }

// view joins a row with its address. Callers hold the lock.
func (r personRepo) view(row personRow) *person.Person {
	a := r.s.st.addresses[row.addressID]
	return &person.Person{
		ID:        row.id,
		FirstName: row.firstName,
		LastName:  row.lastName,
		Address:   a.Address,
		City:      a.CityValue(),
		Zip:       a.ZipValue(),
		Phone:     row.phone,
		Email:     row.email,
		AddressID: row.addressID,
	}
}

func (r personRepo) list(match func(personRow, address.Address) bool) []*person.Person {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*person.Person
	for _, id := range sortedIDs(r.s.st.persons) {
		row := r.s.st.persons[id]
		if match(row, r.s.st.addresses[row.addressID]) {
			out = append(out, r.view(row))
		}
	}
	return out
}

func (r personRepo) GetByID(_ context.Context, id int64) (*person.Person, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.st.persons[id]
	if !ok {
		return nil, person.ErrNotFound
	}
	return r.view(row), nil
}

func (r personRepo) ListByNames(_ context.Context, firstName, lastName string) ([]*person.Person, error) {
	return r.list(func(p personRow, _ address.Address) bool {
		return p.firstName == firstName && p.lastName == lastName
	}), nil
}

func (r personRepo) ExistsByNames(ctx context.Context, firstName, lastName string) (bool, error) {
	ps, err := r.ListByNames(ctx, firstName, lastName)
	return len(ps) > 0, err
}

func (r personRepo) ListByAddress(_ context.Context, addr string) ([]*person.Person, error) {
	return r.list(func(_ personRow, a address.Address) bool { return a.Address == addr }), nil
}

func (r personRepo) ListByFirestation(_ context.Context, station string) ([]*person.Person, error) {
	return r.list(func(_ personRow, a address.Address) bool {
		return a.Firestation != nil && *a.Firestation == station
	}), nil
}

func (r personRepo) ListByCity(_ context.Context, city string) ([]*person.Person, error) {
	return r.list(func(_ personRow, a address.Address) bool {
		return a.City != nil && *a.City == city
	}), nil
}

func (r personRepo) row(p *person.Person) (personRow, error) {
	if _, ok := r.s.st.addresses[p.AddressID]; !ok {
		return personRow{}, fmt.Errorf("insert person: unknown address id %d", p.AddressID)
	}
	return personRow{
		id:        p.ID,
		firstName: p.FirstName,
		lastName:  p.LastName,
		addressID: p.AddressID,
		phone:     p.Phone,
		email:     p.Email,
	}, nil
}

func (r personRepo) Create(_ context.Context, p *person.Person) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("persons.Create"); err != nil {
		return err
	}
	r.s.st.nextPerson++
	p.ID = r.s.st.nextPerson
	row, err := r.row(p)
	if err != nil {
		return err
	}
	r.s.st.persons[p.ID] = row
	return nil
}

func (r personRepo) Update(_ context.Context, p *person.Person) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("persons.Update"); err != nil {
		return err
	}
	if _, ok := r.s.st.persons[p.ID]; !ok {
		return person.ErrNotFound
	}
	row, err := r.row(p)
	if err != nil {
		return err
	}
	r.s.st.persons[p.ID] = row
	return nil
}

// deleteWhere refuses to orphan a medical record, like the foreign key.
func (r personRepo) deleteWhere(match func(personRow) bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("persons.Delete"); err != nil {
		return 0, err
	}
	var n int64
	for id, row := range r.s.st.persons {
		if !match(row) {
			continue
		}
		if _, ok := r.s.st.records[id]; ok {
			return 0, errors.New("delete person: medical record still references it")
		}
		delete(r.s.st.persons, id)
		n++
	}
	return n, nil
}

func (r personRepo) DeleteByID(_ context.Context, id int64) (int64, error) {
	return r.deleteWhere(func(p personRow) bool { return p.id == id })
}

func (r personRepo) DeleteByNames(_ context.Context, firstName, lastName string) (int64, error) {
	return r.deleteWhere(func(p personRow) bool {
		return p.firstName == firstName && p.lastName == lastName
	})
}

func (r personRepo) Count(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.st.persons)), nil
}

// medical records

type recordRepo struct{ s *Store }

func (r recordRepo) view(id int64, row recordRow) *medicalrecord.MedicalRecord {
	owner := r.s.st.persons[id]
	return &medicalrecord.MedicalRecord{
		PersonID:    id,
		FirstName:   owner.firstName,
		LastName:    owner.lastName,
		Birthdate:   row.birthdate,
		Medications: copyStrings(row.medications),
		Allergies:   copyStrings(row.allergies),
	}
}

func (r recordRepo) GetByPersonID(_ context.Context, personID int64) (*medicalrecord.MedicalRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.st.records[personID]
	if !ok {
		return nil, medicalrecord.ErrNotFound
	}
	return r.view(personID, row), nil
}

func (r recordRepo) ListByPersonNames(_ context.Context, firstName, lastName string) ([]*medicalrecord.MedicalRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*medicalrecord.MedicalRecord
	for _, id := range sortedIDs(r.s.st.records) {
		owner := r.s.st.persons[id]
		if owner.firstName == firstName && owner.lastName == lastName {
			out = append(out, r.view(id, r.s.st.records[id]))
		}
	}
	return out, nil
}

func (r recordRepo) ListByPersonIDs(_ context.Context, personIDs []int64) (map[int64]*medicalrecord.MedicalRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("records.ListByPersonIDs"); err != nil {
		return nil, err
	}
	out := make(map[int64]*medicalrecord.MedicalRecord, len(personIDs))
	for _, id := range personIDs {
		if row, ok := r.s.st.records[id]; ok {
			out[id] = r.view(id, row)
		}
	}
	return out, nil
}

func (r recordRepo) ExistsByPersonID(_ context.Context, personID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.st.records[personID]
	return ok, nil
}

func recordOf(m *medicalrecord.MedicalRecord) recordRow {
	return recordRow{
		birthdate:   m.Birthdate,
		medications: copyStrings(m.Medications),
		allergies:   copyStrings(m.Allergies),
	}
}

func (r recordRepo) Create(_ context.Context, m *medicalrecord.MedicalRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("records.Create"); err != nil {
		return err
	}
	if _, ok := r.s.st.persons[m.PersonID]; !ok {
		return fmt.Errorf("insert medical record: unknown person id %d", m.PersonID)
	}
	if _, ok := r.s.st.records[m.PersonID]; ok {
		return medicalrecord.ErrExists
	}
	r.s.st.records[m.PersonID] = recordOf(m)
	return nil
}

func (r recordRepo) Update(_ context.Context, m *medicalrecord.MedicalRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.records[m.PersonID]; !ok {
		return medicalrecord.ErrNotFound
	}
	r.s.st.records[m.PersonID] = recordOf(m)
	return nil
}

func (r recordRepo) DeleteByPersonID(_ context.Context, personID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.records[personID]; !ok {
		return 0, nil
	}
	delete(r.s.st.records, personID)
	return 1, nil
}

func (r recordRepo) DeleteByPersonNames(_ context.Context, firstName, lastName string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id := range r.s.st.records {
		owner := r.s.st.persons[id]
		if owner.firstName == firstName && owner.lastName == lastName {
			delete(r.s.st.records, id)
			n++
		}
	}
	return n, nil
}

func (r recordRepo) Count(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.st.records)), nil
}
