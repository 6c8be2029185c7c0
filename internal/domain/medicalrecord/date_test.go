package medicalrecord

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var m MedicalRecord
	require.NoError(t, json.Unmarshal([]byte(`{"birthdate":"03/06/1984","medications":[],"allergies":[]}`), &m))
	require.NotNil(t, m.Birthdate)
	assert.Equal(t, NewDate(1984, time.March, 6), *m.Birthdate)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"birthdate":"03/06/1984"`)
}

func TestDate_RejectsOtherLayouts(t *testing.T) {
	for _, raw := range []string{`"1984-03-06"`, `"13/01/1984"`, `"03/06/84"`, `19840306`} {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(raw), &d), raw)
	}
}

func TestDate_YearsUntil(t *testing.T) {
	birth := NewDate(2000, time.June, 15)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"day before birthday", time.Date(2018, time.June, 14, 23, 59, 0, 0, time.UTC), 17},
		{"on birthday", time.Date(2018, time.June, 15, 0, 0, 0, 0, time.UTC), 18},
		{"after birthday", time.Date(2018, time.December, 1, 0, 0, 0, 0, time.UTC), 18},
		{"same day of birth", time.Date(2000, time.June, 15, 12, 0, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, birth.YearsUntil(tt.now))
		})
	}
}

func TestDate_YearsUntil_LeapDay(t *testing.T) {
	birth := NewDate(2004, time.February, 29)
	assert.Equal(t, 17, birth.YearsUntil(time.Date(2022, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 18, birth.YearsUntil(time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestValidate(t *testing.T) {
	d := NewDate(1984, time.March, 6)
	valid := func() *MedicalRecord {
		return &MedicalRecord{
			FirstName:   "John",
			LastName:    "Boyd",
			Birthdate:   &d,
			Medications: []string{"aznol:350mg", "hydrapermazol:100mg"},
			Allergies:   []string{"nillacilan"},
		}
	}
	require.NoError(t, valid().Validate())

	noNames := valid()
	noNames.FirstName, noNames.LastName = "", ""
	assert.NoError(t, noNames.Validate(), "owner fields are optional")

	noBirthdate := valid()
	noBirthdate.Birthdate = nil
	assert.Error(t, noBirthdate.Validate())

	nilList := valid()
	nilList.Allergies = nil
	assert.Error(t, nilList.Validate())

	badMedication := valid()
	badMedication.Medications = []string{"aznol:350mg", "Aznol 350"}
	err := badMedication.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "medications[1]")
}
