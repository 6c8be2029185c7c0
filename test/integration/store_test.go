//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetynet/alerts/internal/domain/address"
	"github.com/safetynet/alerts/internal/domain/medicalrecord"
	"github.com/safetynet/alerts/internal/domain/person"
	"github.com/safetynet/alerts/internal/platform/apierror"
)

func ptr(s string) *string { return &s }

func TestAddressRepo(t *testing.T) {
	ctx := context.Background()
	s := resetDB(t)

	a := &address.Address{Address: "29 15th St", Firestation: ptr("2")}
	require.NoError(t, s.addresses.Create(ctx, a))
	assert.NotZero(t, a.ID)

	err := s.addresses.Create(ctx, &address.Address{Address: "29 15th St"})
	assert.ErrorIs(t, err, apierror.ErrAlreadyExists, "address is unique")

	got, err := s.addresses.GetByAddress(ctx, "29 15th St")
	require.NoError(t, err)
	assert.Nil(t, got.City)
	assert.Equal(t, "2", *got.Firestation)

	got.City, got.Zip = ptr("Culver"), ptr("97451")
	got.Firestation = nil
	require.NoError(t, s.addresses.Update(ctx, got))
	got, err = s.addresses.GetByAddress(ctx, "29 15th St")
	require.NoError(t, err)
	assert.True(t, got.Complete())
	assert.Nil(t, got.Firestation)

	_, err = s.addresses.GetByAddress(ctx, "nowhere")
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	require.NoError(t, s.addresses.Create(ctx, &address.Address{Address: "644 Gershwin Cir", Firestation: ptr("1")}))
	require.NoError(t, s.addresses.Create(ctx, &address.Address{Address: "834 Binoc Ave", Firestation: ptr("3")}))
	covered, err := s.addresses.ListByFirestations(ctx, []string{"3", "1"})
	require.NoError(t, err)
	require.Len(t, covered, 2)
	assert.Equal(t, "644 Gershwin Cir", covered[0].Address)
	assert.Equal(t, "834 Binoc Ave", covered[1].Address)
}

func createPerson(t *testing.T, s *stores, first, last, addr string) *person.Person {
	t.Helper()
	ctx := context.Background()
	a, err := address.Reconcile(ctx, s.addresses, addr, "Culver", "97451")
	require.NoError(t, err)
	p := &person.Person{
		FirstName: first,
		LastName:  last,
		AddressID: a.ID,
		Phone:     "841-874-6512",
		Email:     "jaboyd@email.com",
	}
	require.NoError(t, s.persons.Create(ctx, p))
	return p
}

func TestPersonRepo(t *testing.T) {
	ctx := context.Background()
	s := resetDB(t)

	john := createPerson(t, s, "John", "Boyd", "1509 Culver St")
	createPerson(t, s, "Jacob", "Boyd", "1509 Culver St")
	createPerson(t, s, "Jean", "Sebastien", "29 15th St")
	createPerson(t, s, "Jean", "Sebastien", "29 15th St")

	got, err := s.persons.GetByID(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, "1509 Culver St", got.Address)
	assert.Equal(t, "Culver", got.City)

	_, err = s.persons.GetByID(ctx, 999)
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	jeans, err := s.persons.ListByNames(ctx, "Jean", "Sebastien")
	require.NoError(t, err)
	assert.Len(t, jeans, 2)

	exists, err := s.persons.ExistsByNames(ctx, "John", "Boyd")
	require.NoError(t, err)
	assert.True(t, exists)

	residents, err := s.persons.ListByAddress(ctx, "1509 Culver St")
	require.NoError(t, err)
	assert.Len(t, residents, 2)

	byCity, err := s.persons.ListByCity(ctx, "Culver")
	require.NoError(t, err)
	assert.Len(t, byCity, 4)

	a, err := s.addresses.GetByAddress(ctx, "1509 Culver St")
	require.NoError(t, err)
	a.Firestation = ptr("3")
	require.NoError(t, s.addresses.Update(ctx, a))
	covered, err := s.persons.ListByFirestation(ctx, "3")
	require.NoError(t, err)
	assert.Len(t, covered, 2)

	got.Phone = "841-874-0000"
	require.NoError(t, s.persons.Update(ctx, got))
	got, err = s.persons.GetByID(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, "841-874-0000", got.Phone)

	n, err := s.persons.DeleteByNames(ctx, "Jean", "Sebastien")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.persons.DeleteByID(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	total, err := s.persons.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestMedicalRecordRepo(t *testing.T) {
	ctx := context.Background()
	s := resetDB(t)
	john := createPerson(t, s, "John", "Boyd", "1509 Culver St")
	jacob := createPerson(t, s, "Jacob", "Boyd", "1509 Culver St")

	birth := medicalrecord.NewDate(1984, time.March, 6)
	m := &medicalrecord.MedicalRecord{
		PersonID:    john.ID,
		Birthdate:   &birth,
		Medications: []string{"aznol:350mg", "hydrapermazol:100mg"},
		Allergies:   []string{"nillacilan"},
	}
	require.NoError(t, s.records.Create(ctx, m))
	assert.ErrorIs(t, s.records.Create(ctx, m), apierror.ErrAlreadyExists, "primary key is the second line of defence")

	require.NoError(t, s.records.Create(ctx, &medicalrecord.MedicalRecord{PersonID: jacob.ID}))

	got, err := s.records.GetByPersonID(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, "John", got.FirstName)
	assert.Equal(t, birth, *got.Birthdate)
	assert.Equal(t, []string{"aznol:350mg", "hydrapermazol:100mg"}, got.Medications)

	jacobs, err := s.records.GetByPersonID(ctx, jacob.ID)
	require.NoError(t, err)
	assert.Nil(t, jacobs.Birthdate)
	assert.Equal(t, []string{}, jacobs.Medications)

	byIDs, err := s.records.ListByPersonIDs(ctx, []int64{john.ID, jacob.ID, 999})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	byNames, err := s.records.ListByPersonNames(ctx, "John", "Boyd")
	require.NoError(t, err)
	require.Len(t, byNames, 1)

	got.Allergies = []string{}
	require.NoError(t, s.records.Update(ctx, got))
	got, err = s.records.GetByPersonID(ctx, john.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Allergies)

	n, err := s.records.DeleteByPersonNames(ctx, "John", "Boyd")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.records.GetByPersonID(ctx, john.ID)
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	n, err = s.records.DeleteByPersonID(ctx, jacob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
