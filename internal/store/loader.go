package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/i474232898/airsense/internal/airquality"
)

// Required header columns of a readings table.
const (
	ColDatetime  = "datetime"
	ColLatitude  = "latitude"
	ColLongitude = "longitude"
	ColPM25      = "PM2.5"
)

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyTable is returned when the source has no header row.
	ErrEmptyTable = errors.New("readings table is empty")
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// LoadFile loads readings from a .csv or .xlsx file, chosen by extension.
func LoadFile(path string) (*MemoryStore, error) {
	var (
		readings []airquality.Reading
		err      error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		readings, err = loadXLSX(path)
	default:
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open readings: %w", err)
		}
		defer f.Close()
		readings, err = ReadCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return NewMemoryStore(readings), nil
}

// ReadCSV parses a readings table in CSV form.
func ReadCSV(r io.Reader) ([]airquality.Reading, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func loadXLSX(path string) ([]airquality.Reading, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

// parseRows turns a header row plus data rows into readings.
// Rows with an empty or NaN PM2.5 cell are skipped; any other malformed value is an error.
func parseRows(rows [][]string) ([]airquality.Reading, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	idx, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	readings := make([]airquality.Reading, 0, len(rows)-1)
	skipped := 0
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}

		pmStr := cell(row, idx[ColPM25])
		if pmStr == "" {
			skipped++
			continue
		}

		ts, err := parseTime(cell(row, idx[ColDatetime]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		lat, err := parseFloat(cell(row, idx[ColLatitude]))
		if err != nil {
			return nil, fmt.Errorf("row %d: latitude: %w", line, err)
		}
		lon, err := parseFloat(cell(row, idx[ColLongitude]))
		if err != nil {
			return nil, fmt.Errorf("row %d: longitude: %w", line, err)
		}
		pm, err := parseFloat(pmStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: PM2.5: %w", line, err)
		}
		if math.IsNaN(pm) {
			skipped++
			continue
		}

		readings = append(readings, airquality.Reading{
			Time:      ts,
			Latitude:  lat,
			Longitude: lon,
			PM25:      pm,
		})
	}

	if skipped > 0 {
		slog.Warn("skipped readings without PM2.5 value", "rows", skipped)
	}
	return readings, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	for _, col := range []string{ColDatetime, ColLatitude, ColLongitude, ColPM25} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	return strconv.ParseFloat(s, 64)
}

// parseTime accepts RFC3339 and the common naive layouts; naive values are UTC.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}
