package spreadsheet

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hl7fileprocessor/internal/patient"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func writeAndRead(t *testing.T, rows [][]interface{}) []patient.RawRow {
	t.Helper()

	path := filepath.Join(t.TempDir(), "patients.xlsx")
	require.NoError(t, WriteWorkbook(path, "Patients", patient.Header, rows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	raw, err := NewExcelSource().ReadRows(context.Background(), f)
	require.NoError(t, err)
	return raw
}

func TestExcelSource_SkipsHeaderAndReadsRows(t *testing.T) {
	raw := writeAndRead(t, [][]interface{}{
		{"P001", "Alice", "Smith", "1985-01-15", "F"},
		{"P002", "Bob", "Johnson", "1979-08-02", "M"},
	})

	require.Len(t, raw, 2)
	assert.Equal(t, 2, raw[0].Number)
	assert.Equal(t, 3, raw[1].Number)
	assert.Equal(t, "P001", raw[0].Cell(patient.ColPatientID).Text)
	assert.Equal(t, "Johnson", raw[1].Cell(patient.ColLastName).Text)
	assert.False(t, raw[0].Cell(patient.ColDateOfBirth).HasTime)
}

func TestExcelSource_NativeDateCells(t *testing.T) {
	raw := writeAndRead(t, [][]interface{}{
		{"P001", "Alice", "Smith", date(1985, time.January, 15), "F"},
	})

	require.Len(t, raw, 1)
	dob := raw[0].Cell(patient.ColDateOfBirth)
	require.True(t, dob.HasTime)
	assert.Equal(t, 1985, dob.Time.Year())
	assert.Equal(t, time.January, dob.Time.Month())
	assert.Equal(t, 15, dob.Time.Day())

	row, err := patient.ValidateRow(raw[0])
	require.NoError(t, err)
	assert.Equal(t, date(1985, time.January, 15), row.DateOfBirth)
}

func TestExcelSource_StopsAtFirstBlankRow(t *testing.T) {
	raw := writeAndRead(t, [][]interface{}{
		{"P001", "Alice", "Smith", "1985-01-15", "F"},
		{},
		{"P003", "Carol", "Diaz", "1993-12-21", "F"},
	})

	require.Len(t, raw, 1)
	assert.Equal(t, "P001", raw[0].Cell(patient.ColPatientID).Text)
}

func TestExcelSource_WhitespaceRowIsNotEndOfData(t *testing.T) {
	raw := writeAndRead(t, [][]interface{}{
		{"P001", "Alice", "Smith", "1985-01-15", "F"},
		{" "},
		{"P003", "Carol", "Diaz", "1993-12-21", "F"},
	})

	require.Len(t, raw, 3)
	assert.Equal(t, 3, raw[1].Number)
	assert.Equal(t, "P003", raw[2].Cell(patient.ColPatientID).Text)

	_, err := patient.ValidateRow(raw[1])
	assert.Error(t, err)
}

func TestExcelSource_ShortRowsPadded(t *testing.T) {
	raw := writeAndRead(t, [][]interface{}{
		{"P001", "Alice"},
	})

	require.Len(t, raw, 1)
	assert.Len(t, raw[0].Cells, patient.ColumnCount)
	assert.Equal(t, "", raw[0].Cell(patient.ColGender).Text)
}

func TestExcelSource_HeaderOnly(t *testing.T) {
	raw := writeAndRead(t, nil)
	assert.Empty(t, raw)
}

func TestExcelSource_NotAWorkbook(t *testing.T) {
	_, err := NewExcelSource().ReadRows(context.Background(), bytes.NewReader([]byte("not a zip")))
	assert.Error(t, err)
}

func TestExcelSource_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.xlsx")
	require.NoError(t, WriteWorkbook(path, "Patients", patient.Header, [][]interface{}{
		{"P001", "Alice", "Smith", "1985-01-15", "F"},
	}))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewExcelSource().ReadRows(ctx, f)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsDatePattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{pattern: "yyyy-mm-dd", want: true},
		{pattern: "dd/mm/yyyy hh:mm", want: true},
		{pattern: "[$-409]mmmm d, yyyy", want: true},
		{pattern: "0.00", want: false},
		{pattern: "#,##0", want: false},
		{pattern: `0 "days"`, want: false},
		{pattern: "[Red]0.00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, isDatePattern(tt.pattern))
		})
	}
}

func TestIsBuiltInDateFormat(t *testing.T) {
	assert.True(t, isBuiltInDateFormat(14))
	assert.True(t, isBuiltInDateFormat(22))
	assert.False(t, isBuiltInDateFormat(0))
	assert.False(t, isBuiltInDateFormat(2))
}
