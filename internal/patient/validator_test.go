package patient

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hl7fileprocessor/pkg/errors"
)

func rawRow(number int, cells ...string) RawRow {
	row := RawRow{Number: number}
	for _, c := range cells {
		row.Cells = append(row.Cells, TextCell(c))
	}
	return row
}

func TestValidateRow_Valid(t *testing.T) {
	row, err := ValidateRow(rawRow(2, " P001 ", "Alice", " Smith", "1985-01-15", "f"))
	require.NoError(t, err)

	assert.Equal(t, Row{
		PatientID:   "P001",
		FirstName:   "Alice",
		LastName:    "Smith",
		DateOfBirth: time.Date(1985, time.January, 15, 0, 0, 0, 0, time.UTC),
		Gender:      "F",
	}, row)
}

func TestValidateRow_Deterministic(t *testing.T) {
	raw := rawRow(2, "P002", "Bob", "Johnson", "1979-08-02", "M")

	first, err := ValidateRow(raw)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ValidateRow(raw)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestValidateRow_NativeDate(t *testing.T) {
	raw := rawRow(3, "P003", "Carol", "Diaz", "", "F")
	raw.Cells[ColDateOfBirth] = TimeCell(time.Date(1993, time.December, 21, 13, 45, 0, 0, time.Local))

	row, err := ValidateRow(raw)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1993, time.December, 21, 0, 0, 0, 0, time.UTC), row.DateOfBirth)
}

func TestValidateRow_TextDateLayouts(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "iso date", text: "1985-01-15"},
		{name: "iso datetime", text: "1985-01-15T08:30:00"},
		{name: "rfc3339", text: "1985-01-15T08:30:00Z"},
		{name: "space separated", text: "1985-01-15 08:30:00"},
		{name: "slashes", text: "1985/01/15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := ValidateRow(rawRow(2, "P1", "A", "B", tt.text, "M"))
			require.NoError(t, err)
			assert.Equal(t, time.Date(1985, time.January, 15, 0, 0, 0, 0, time.UTC), row.DateOfBirth)
		})
	}
}

func TestValidateRow_Failures(t *testing.T) {
	tests := []struct {
		name       string
		raw        RawRow
		wantField  string
		wantReason string
	}{
		{
			name:       "blank patient id",
			raw:        rawRow(2, "  ", "Alice", "Smith", "1985-01-15", "F"),
			wantField:  "PatientId",
			wantReason: ReasonMissingPatientID,
		},
		{
			name:       "blank first name",
			raw:        rawRow(2, "P1", "", "Smith", "1985-01-15", "F"),
			wantField:  "FirstName",
			wantReason: ReasonMissingName,
		},
		{
			name:       "blank last name",
			raw:        rawRow(2, "P1", "Alice", " ", "1985-01-15", "F"),
			wantField:  "LastName",
			wantReason: ReasonMissingName,
		},
		{
			name:       "patient id checked before name",
			raw:        rawRow(2, "", "", "", "", ""),
			wantField:  "PatientId",
			wantReason: ReasonMissingPatientID,
		},
		{
			name:       "unparsable date",
			raw:        rawRow(2, "P1", "Alice", "Smith", "15/01/1985", "F"),
			wantField:  "DateOfBirth",
			wantReason: ReasonInvalidDateOfBirth,
		},
		{
			name:       "missing date",
			raw:        rawRow(2, "P1", "Alice", "Smith"),
			wantField:  "DateOfBirth",
			wantReason: ReasonInvalidDateOfBirth,
		},
		{
			name:       "date checked before gender",
			raw:        rawRow(2, "P1", "Alice", "Smith", "nope", "X"),
			wantField:  "DateOfBirth",
			wantReason: ReasonInvalidDateOfBirth,
		},
		{
			name:       "unknown gender",
			raw:        rawRow(2, "P1", "Alice", "Smith", "1985-01-15", "U"),
			wantField:  "Gender",
			wantReason: ReasonInvalidGender,
		},
		{
			name:       "spelled out gender",
			raw:        rawRow(2, "P1", "Alice", "Smith", "1985-01-15", "Female"),
			wantField:  "Gender",
			wantReason: ReasonInvalidGender,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := ValidateRow(tt.raw)
			require.Error(t, err)
			assert.Equal(t, Row{}, row)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.Equal(t, tt.wantReason, vErr.Reason)
			assert.Equal(t, 2, vErr.Row)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestValidateRow_GenderCasings(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "m", want: "M"},
		{in: "M", want: "M"},
		{in: " m ", want: "M"},
		{in: "f", want: "F"},
		{in: "F", want: "F"},
		{in: "o", want: "O"},
		{in: " o ", want: "O"},
		{in: "O", want: "O"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			row, err := ValidateRow(rawRow(2, "P1", "A", "B", "2000-01-01", tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, row.Gender)
		})
	}
}
