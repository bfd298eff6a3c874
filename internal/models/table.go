package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Names of the columns appended to the enriched output table.
const (
	ColPhysicalAddress = "Physical_Address"
	ColStreetName      = "Street_Name"
	ColAddressQuality  = "Address_Quality"
)

// ErrMissingColumns is returned when an uploaded table lacks the required
// coordinate columns.
var ErrMissingColumns = errors.New("missing required columns: Center_Latitude, Center_Longitude")

// Table is an ordered tabular row set as parsed from an uploaded
// spreadsheet. Rows are processed in table order. The coordinate columns are
// resolved once at construction; every other column is carried through
// untouched into the enriched output.
type Table struct {
	Headers []string   // Column names in original order.
	Records [][]string // Data rows; possibly ragged (short rows read as empty cells).

	latCol  int
	lonCol  int
	cityCol int
}

// NewTable builds a Table from raw headers and records, resolving the
// required coordinate columns and the optional city column. Header matching
// is tolerant of case and of space/underscore variants, so "Center_Latitude",
// "center latitude" and "CENTER-LATITUDE" all qualify.
func NewTable(headers []string, records [][]string) (*Table, error) {
	tbl := &Table{
		Headers: headers,
		Records: records,
		latCol:  -1,
		lonCol:  -1,
		cityCol: -1,
	}

	for idx, header := range headers {
		switch normalizeHeader(header) {
		case "centerlatitude":
			tbl.latCol = idx
		case "centerlongitude":
			tbl.lonCol = idx
		case "city":
			tbl.cityCol = idx
		}
	}

	if tbl.latCol < 0 || tbl.lonCol < 0 {
		return nil, ErrMissingColumns
	}

	return tbl, nil
}

// normalizeHeader lowers the header and strips separators so that naming
// variants across spreadsheets collapse to one canonical key.
func normalizeHeader(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "")
	return replacer.Replace(header)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Records)
}

// cell returns the value at (row, col), treating cells beyond a ragged row's
// end as empty.
func (t *Table) cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Records) {
		return ""
	}
	record := t.Records[row]
	if col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

// Coordinates returns the coordinate pair of the given row. ok is false when
// either cell is empty, non-numeric or NaN; such rows must never reach the
// geocoding adapter.
func (t *Table) Coordinates(row int) (Coordinates, bool) {
	lat, latErr := strconv.ParseFloat(t.cell(row, t.latCol), 64)
	lon, lonErr := strconv.ParseFloat(t.cell(row, t.lonCol), 64)
	if latErr != nil || lonErr != nil || math.IsNaN(lat) || math.IsNaN(lon) {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: lat, Longitude: lon}, true
}

// Locality returns the value of the optional city column for the given row,
// used as a fallback label when a point cannot be resolved to an address.
func (t *Table) Locality(row int) string {
	return t.cell(row, t.cityCol)
}

// Enriched builds the output table: the first len(outcomes) rows of the
// input with the three address columns appended. The truncation to the
// processed extent is deliberate; rows that were never attempted are not
// part of the result.
func (t *Table) Enriched(outcomes []AddressOutcome) *Table {
	headers := make([]string, 0, len(t.Headers)+3)
	headers = append(headers, t.Headers...)
	headers = append(headers, ColPhysicalAddress, ColStreetName, ColAddressQuality)

	records := make([][]string, 0, len(outcomes))
	for idx, outcome := range outcomes {
		record := make([]string, 0, len(t.Headers)+3)
		for col := range t.Headers {
			record = append(record, t.cell(idx, col))
		}
		record = append(record, outcome.PhysicalAddress, outcome.StreetName, string(outcome.Quality))
		records = append(records, record)
	}

	return &Table{
		Headers: headers,
		Records: records,
		latCol:  t.latCol,
		lonCol:  t.lonCol,
		cityCol: t.cityCol,
	}
}
