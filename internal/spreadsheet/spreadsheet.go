// Package spreadsheet converts between uploaded files and the in-memory
// table model. It understands Excel workbooks (the original artifact format)
// and CSV.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the enriched rows in downloaded
// workbooks.
const SheetName = "Addresses"

// Common errors for spreadsheet parsing.
var (
	// ErrUnsupportedFormat is returned for file extensions other than
	// .xlsx, .xlsm and .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx or .csv")
	// ErrEmptyFile is returned when the file has no header row.
	ErrEmptyFile = errors.New("spreadsheet has no header row")
)

// Read parses an uploaded spreadsheet into a Table, dispatching on the file
// extension. The first row is the header; every following row is data.
func Read(r io.Reader, filename string) (*models.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func readWorkbook(r io.Reader) (*models.Table, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	return models.NewTable(rows[0], rows[1:])
}

func readCSV(r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	return models.NewTable(rows[0], rows[1:])
}

// WriteWorkbook materializes the table as an Excel workbook with a single
// "Addresses" sheet, header row first.
func WriteWorkbook(w io.Writer, table *models.Table) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(table.Headers))
	for idx, name := range table.Headers {
		header[idx] = name
	}
	if err := setRow(file, 1, header); err != nil {
		return err
	}

	for idx, record := range table.Records {
		row := make([]interface{}, len(record))
		for col, value := range record {
			row[col] = value
		}
		if err := setRow(file, idx+2, row); err != nil {
			return err
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(file *excelize.File, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	if err = file.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

// WriteCSV materializes the table as CSV, header row first.
func WriteCSV(w io.Writer, table *models.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, record := range table.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
