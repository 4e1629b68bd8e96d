package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeInputUnmarshal(t *testing.T) {
	t.Run("tracks presence and null", func(t *testing.T) {
		var in EmployeeInput
		err := json.Unmarshal([]byte(`{"name":"Jordan Lee","phone":null,"subjects":["go","sql"],"hire_date":"2021-03-04"}`), &in)
		require.NoError(t, err)

		assert.True(t, in.Name.Set)
		assert.Equal(t, "Jordan Lee", in.Name.Value)
		assert.True(t, in.Phone.Set)
		assert.True(t, in.Phone.Null)
		assert.False(t, in.Email.Set)
		assert.Equal(t, []string{"go", "sql"}, in.Subjects.Value)
		assert.Equal(t, NewDate(2021, time.March, 4), in.HireDate.Value)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		var in EmployeeInput
		err := json.Unmarshal([]byte(`{"id":"abc"}`), &in)
		assert.Error(t, err)
	})

	t.Run("rejects wrong types", func(t *testing.T) {
		var in EmployeeInput
		err := json.Unmarshal([]byte(`{"age":"forty"}`), &in)
		assert.Error(t, err)
	})
}

func TestEmployeeInputColumns(t *testing.T) {
	in := EmployeeInput{
		Name:    Some("Ada"),
		Phone:   Null[string](),
		Flagged: Some(true),
	}

	cols := in.Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, ColumnValue{Column: "name", Value: "Ada"}, cols[0])
	assert.Equal(t, ColumnValue{Column: "phone", Value: nil}, cols[1])
	assert.Equal(t, ColumnValue{Column: "flagged", Value: true}, cols[2])
	assert.False(t, in.IsEmpty())
	assert.True(t, EmployeeInput{}.IsEmpty())
}

func TestEmployeeInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   EmployeeInput
		wantErr bool
	}{
		{"empty input", EmployeeInput{}, false},
		{"nullable field set to null", EmployeeInput{Address: Null[string]()}, false},
		{"non-nullable field set to null", EmployeeInput{Salary: Null[float64]()}, true},
		{"negative age", EmployeeInput{Age: Some(-1)}, true},
		{"negative salary", EmployeeInput{Salary: Some(-0.5)}, true},
		{"salary with three decimals", EmployeeInput{Salary: Some(1200.125)}, true},
		{"salary beyond column precision", EmployeeInput{Salary: Some(1e10)}, true},
		{"salary with cents", EmployeeInput{Salary: Some(4321.07)}, false},
		{"largest storable salary", EmployeeInput{Salary: Some(9999999999.99)}, false},
		{"blank name", EmployeeInput{Name: Some("  ")}, true},
		{"valid fields", EmployeeInput{Age: Some(30), Salary: Some(1200.5), Name: Some("Ada")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, CodeInvalidDocument, CodeOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2020-02-29T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, "2020-02-29", d.String())

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2020-02-29"`, string(b))

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2019, time.July, 1), scanned)

	v, err := scanned.Value()
	require.NoError(t, err)
	assert.Equal(t, "2019-07-01", v)

	_, err = ParseDate("01/07/2019")
	assert.Error(t, err)
}
