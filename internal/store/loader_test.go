package store

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `datetime,latitude,longitude,AOD,PM2.5
2025-06-01 00:00:00,28.61,77.21,0.85,70.7
2025-06-01T03:00:00,28.70,77.10,1.50,115.2
2025-06-01 06:00,28.61,77.21,0.90,
2025-06-02,19.07,72.88,0.40,44.0

2025-06-02T09:30:00+05:30,19.07,72.88,0.45,47.5
`

func TestReadCSV(t *testing.T) {
	readings, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, readings, 4, "row without PM2.5 and blank line are skipped")

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), readings[0].Time)
	assert.Equal(t, 28.61, readings[0].Latitude)
	assert.Equal(t, 77.21, readings[0].Longitude)
	assert.Equal(t, 70.7, readings[0].PM25)

	assert.Equal(t, time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC), readings[1].Time)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), readings[2].Time)

	y, m, d := readings[3].Time.Date()
	assert.Equal(t, []int{2025, 6, 2}, []int{y, int(m), d}, "offset timestamps keep their own calendar day")
}

func TestReadCSV_columnOrderAndBOM(t *testing.T) {
	in := "\ufeffPM2.5,longitude,latitude,datetime\n55.5,77.2,28.6,2025-06-01 12:00:00\n"
	readings, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 55.5, readings[0].PM25)
	assert.Equal(t, 28.6, readings[0].Latitude)
	assert.Equal(t, 77.2, readings[0].Longitude)
}

func TestReadCSV_missingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("datetime,latitude,PM2.5\n2025-06-01,28.6,10\n"))
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "longitude")
}

func TestReadCSV_empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestReadCSV_malformed(t *testing.T) {
	cases := map[string]string{
		"datetime":  "yesterday,28.6,77.2,10",
		"latitude":  "2025-06-01,north,77.2,10",
		"longitude": "2025-06-01,28.6,,10",
		"pm25":      "2025-06-01,28.6,77.2,lots",
	}
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader("datetime,latitude,longitude,PM2.5\n" + row + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestReadCSV_skipsNaN(t *testing.T) {
	readings, err := ReadCSV(strings.NewReader("datetime,latitude,longitude,PM2.5\n2025-06-01,28.6,77.2,NaN\n2025-06-01,28.6,77.2,12\n"))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.False(t, math.IsNaN(readings[0].PM25))
}

func TestLoadFile_csv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
}

func TestLoadFile_xlsx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"datetime", "latitude", "longitude", "PM2.5"},
		{"2025-06-01 00:00:00", "28.61", "77.21", "70.7"},
		{"2025-06-01 03:00:00", "28.7", "77.1", "115.2"},
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestLoadFile_missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
