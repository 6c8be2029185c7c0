package alerts_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetynet/alerts/internal/domain/address"
	"github.com/safetynet/alerts/internal/domain/alerts"
	"github.com/safetynet/alerts/internal/domain/seed"
	"github.com/safetynet/alerts/internal/testutil/memstore"
)

// now is fixed so ages do not drift.
var now = time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)

const dataset = `{
  "persons": [
    {"firstName":"John","lastName":"Boyd","address":"1509 Culver St","city":"Culver","zip":"97451","phone":"841-874-6512","email":"jaboyd@email.com"},
    {"firstName":"Jacob","lastName":"Boyd","address":"1509 Culver St","city":"Culver","zip":"97451","phone":"841-874-6513","email":"drk@email.com"},
    {"firstName":"Tenley","lastName":"Boyd","address":"1509 Culver St","city":"Culver","zip":"97451","phone":"841-874-6512","email":"tenz@email.com"},
    {"firstName":"Peter","lastName":"Duncan","address":"644 Gershwin Cir","city":"Culver","zip":"97451","phone":"841-874-6512","email":"jaboyd@email.com"},
    {"firstName":"Eric","lastName":"Cadigan","address":"951 LoneTree Rd","city":"Culver","zip":"97451","phone":"841-874-7458","email":"gramps@email.com"},
    {"firstName":"Lily","lastName":"Cooper","address":"489 Manchester St","city":"Paris","zip":"75000","phone":"841-874-9845","email":"lily@email.com"}
  ],
  "firestations": [
    {"address":"1509 Culver St","station":"3"},
    {"address":"644 Gershwin Cir","station":"1"},
    {"address":"951 LoneTree Rd","station":"2"}
  ],
  "medicalrecords": [
    {"firstName":"John","lastName":"Boyd","birthdate":"03/06/1984","medications":["aznol:350mg","hydrapermazol:100mg"],"allergies":["nillacilan"]},
    {"firstName":"Tenley","lastName":"Boyd","birthdate":"02/18/2012","medications":[],"allergies":["peanut"]},
    {"firstName":"Peter","lastName":"Duncan","birthdate":"09/06/2000","medications":[],"allergies":["shellfish"]}
  ]
}`

func newService(t *testing.T) (*alerts.Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	doc, err := seed.Parse([]byte(dataset))
	require.NoError(t, err)
	_, err = seed.NewLoader(store.Addresses(), store.Persons(), store.Records(), store, nil).Load(context.Background(), doc)
	require.NoError(t, err)

	svc := alerts.NewService(store.Addresses(), store.Persons(), store.Records(), store).
		WithNow(func() time.Time { return now })
	return svc, store
}

func names(ps []*alerts.Person) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.FirstName + " " + p.LastName
	}
	return out
}

func TestPersonsCoveredByFirestation(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.PersonsCoveredByFirestation(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"John Boyd", "Jacob Boyd", "Tenley Boyd"}, names(res.Persons))
	assert.Equal(t, 2, res.AdultsCount, "John is 40 and Jacob has no record")
	assert.Equal(t, 1, res.ChildrenCount)

	john := res.Persons[0]
	require.NotNil(t, john.Age)
	assert.Equal(t, 40, *john.Age)
	assert.Equal(t, "03/06/1984", john.Birthdate.String())
	assert.Nil(t, john.Medications, "coverage does not expose medical detail")
	assert.Nil(t, res.Persons[1].Age)
}

func TestPersonsCoveredByFirestation_UnknownStation(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.PersonsCoveredByFirestation(context.Background(), "9")
	require.NoError(t, err)
	assert.Empty(t, res.Persons)
	assert.Zero(t, res.AdultsCount)
	assert.Zero(t, res.ChildrenCount)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"childrenCount":0,"adultsCount":0,"persons":[]}`, string(b))
}

func TestAdultBoundary(t *testing.T) {
	tests := []struct {
		name      string
		birthdate string
		adult     bool
	}{
		{"turns 18 tomorrow", "06/02/2006", false},
		{"turns 18 today", "06/01/2006", true},
		{"unknown age", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			doc, err := seed.Parse([]byte(`{"persons":[{"firstName":"Kid","lastName":"Test","address":"1 Main St","city":"Culver","zip":"97451","phone":"841-874-0000","email":"kid@email.com"}],"firestations":[],"medicalrecords":[]}`))
			require.NoError(t, err)
			if tt.birthdate != "" {
				raw := `{"firstName":"Kid","lastName":"Test","birthdate":"` + tt.birthdate + `","medications":[],"allergies":[]}`
				require.NoError(t, json.Unmarshal([]byte(`[`+raw+`]`), &doc.MedicalRecords))
			}
			_, err = seed.NewLoader(store.Addresses(), store.Persons(), store.Records(), store, nil).Load(context.Background(), doc)
			require.NoError(t, err)

			svc := alerts.NewService(store.Addresses(), store.Persons(), store.Records(), store).
				WithNow(func() time.Time { return now })
			res, err := svc.ChildAlert(context.Background(), "1 Main St")
			require.NoError(t, err)
			if tt.adult {
				assert.Len(t, res.Adults, 1)
				assert.Empty(t, res.Children)
			} else {
				assert.Len(t, res.Children, 1)
				assert.Empty(t, res.Adults)
			}
		})
	}
}

func TestChildAlert(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.ChildAlert(context.Background(), "1509 Culver St")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tenley Boyd"}, names(res.Children))
	assert.Equal(t, []string{"John Boyd", "Jacob Boyd"}, names(res.Adults))
	require.NotNil(t, res.Children[0].Age)
	assert.Equal(t, 12, *res.Children[0].Age)

	res, err = svc.ChildAlert(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, res.Children)
	assert.Empty(t, res.Adults)
}

func TestPhoneAlert_DistinctInOrder(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.PhoneAlert(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"841-874-6512", "841-874-6513"}, res.Phones)

	res, err = svc.PhoneAlert(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, []string{}, res.Phones)
}

func TestFire(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	res, err := svc.Fire(ctx, "1509 Culver St")
	require.NoError(t, err)
	require.NotNil(t, res.StationNumber)
	assert.Equal(t, "3", *res.StationNumber)
	require.Len(t, res.Persons, 3)
	assert.Equal(t, []string{"aznol:350mg", "hydrapermazol:100mg"}, res.Persons[0].Medications)
	assert.Equal(t, []string{"nillacilan"}, res.Persons[0].Allergies)
	assert.Nil(t, res.Persons[1].Medications, "Jacob has no record")

	res, err = svc.Fire(ctx, "489 Manchester St")
	require.NoError(t, err)
	assert.Nil(t, res.StationNumber, "uncovered address")
	assert.Len(t, res.Persons, 1)

	res, err = svc.Fire(ctx, "nowhere")
	require.NoError(t, err)
	assert.Nil(t, res.StationNumber)
	assert.Empty(t, res.Persons)

	addresses, err := store.Addresses().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), addresses, "views never write")
}

func TestFloodStations(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	station := "1"
	require.NoError(t, store.Addresses().Create(ctx, &address.Address{Address: "Empty Rd", Firestation: &station}))

	res, err := svc.FloodStations(ctx, []string{"1", "3"})
	require.NoError(t, err)
	require.Len(t, res.Stations, 2, "Empty Rd has no resident")
	assert.Equal(t, "1509 Culver St", res.Stations[0].Address)
	assert.Equal(t, []string{"John Boyd", "Jacob Boyd", "Tenley Boyd"}, names(res.Stations[0].Persons))
	assert.Equal(t, "644 Gershwin Cir", res.Stations[1].Address)
	assert.Equal(t, []string{"shellfish"}, res.Stations[1].Persons[0].Allergies)

	res, err = svc.FloodStations(ctx, []string{"8"})
	require.NoError(t, err)
	assert.Empty(t, res.Stations)
}

func TestPersonInfo_ToleratesSeveralMatches(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	res, err := svc.PersonInfo(ctx, "John", "Boyd")
	require.NoError(t, err)
	require.Len(t, res.Persons, 1)
	assert.Equal(t, "jaboyd@email.com", res.Persons[0].Email)

	twin, err := store.Persons().ListByNames(ctx, "John", "Boyd")
	require.NoError(t, err)
	clone := *twin[0]
	require.NoError(t, store.Persons().Create(ctx, &clone))

	res, err = svc.PersonInfo(ctx, "John", "Boyd")
	require.NoError(t, err)
	assert.Len(t, res.Persons, 2)

	res, err = svc.PersonInfo(ctx, "Nobody", "Here")
	require.NoError(t, err)
	assert.Equal(t, []*alerts.Person{}, res.Persons)
}

func TestPersonInfo_KeepsEmptyMedicalLists(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.PersonInfo(context.Background(), "Peter", "Duncan")
	require.NoError(t, err)
	require.Len(t, res.Persons, 1)
	assert.Equal(t, []string{}, res.Persons[0].Medications)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"medications":[]`)
	assert.Contains(t, string(raw), `"allergies":["shellfish"]`)
}

func TestMedicalListsOmittedWithoutDetail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	child, err := svc.ChildAlert(ctx, "1509 Culver St")
	require.NoError(t, err)
	raw, err := json.Marshal(child)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "medications")
	assert.NotContains(t, string(raw), "allergies")

	fire, err := svc.Fire(ctx, "1509 Culver St")
	require.NoError(t, err)
	var body struct {
		Persons []map[string]interface{} `json:"persons"`
	}
	raw, err = json.Marshal(fire)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Len(t, body.Persons, 3)
	assert.Contains(t, body.Persons[0], "medications")
	assert.NotContains(t, body.Persons[1], "medications", "Jacob has no record")
	assert.Equal(t, []interface{}{}, body.Persons[2]["medications"], "Tenley has an empty list")
}

func TestCommunityEmail(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.CommunityEmail(context.Background(), "Culver")
	require.NoError(t, err)
	assert.Equal(t, []string{"jaboyd@email.com", "drk@email.com", "tenz@email.com", "gramps@email.com"}, res.Emails)

	res, err = svc.CommunityEmail(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, []string{"lily@email.com"}, res.Emails)
}
