// Package spreadsheet reads uploaded workbooks into a uniform sheet/row
// representation for the import pipeline.
//
// Input formats are .xlsx, .xls and .csv, validated by file extension or
// declared MIME type before any parsing happens. A CSV file becomes a single
// unnamed sheet. Cell values are kept raw (date cells arrive as serial
// strings) so the value normalizers see the same shapes regardless of the
// workbook's display formatting.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type: expected .xlsx, .xls or .csv")
	ErrEmptyFile         = errors.New("file contains no data")
	ErrNoDataSheets      = errors.New("workbook contains no data sheets")
)

// DefinitionsSheetName is a reserved documentation sheet, always excluded
// from import regardless of casing.
const DefinitionsSheetName = "definitions"

// Row maps original (non-normalized) header text to the raw cell value.
type Row map[string]string

// Sheet is one named table within a workbook.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []Row
}

// Summary describes a selectable sheet for the caller.
type Summary struct {
	Name     string `json:"name"`
	RowCount int    `json:"row_count"`
}

// Workbook holds every parsed sheet in enumeration order.
type Workbook struct {
	sheets []Sheet
}

var supportedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

var supportedMIMETypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel": true,
	"text/csv":                 true,
	"application/csv":          true,
}

// Supported reports whether the upload looks like a spreadsheet, judged by
// file extension or declared MIME type.
func Supported(filename, contentType string) bool {
	if supportedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return true
	}
	mime := contentType
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return supportedMIMETypes[strings.TrimSpace(strings.ToLower(mime))]
}

// Open parses an uploaded spreadsheet into a Workbook.
func Open(r io.Reader, filename, contentType string) (*Workbook, error) {
	if !Supported(filename, contentType) {
		return nil, ErrUnsupportedFormat
	}

	if isCSV(filename, contentType) {
		return openCSV(r)
	}
	return openExcel(r)
}

func isCSV(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return true
	}
	return strings.Contains(strings.ToLower(contentType), "csv")
}

func openCSV(r io.Reader) (*Workbook, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	sheet := Sheet{Headers: headers}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed line: skip, the import pipeline is tolerant by design
			continue
		}
		sheet.Rows = append(sheet.Rows, recordToRow(headers, record))
	}

	return &Workbook{sheets: []Sheet{sheet}}, nil
}

func openExcel(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		if len(rows) == 0 {
			wb.sheets = append(wb.sheets, Sheet{Name: name})
			continue
		}

		headers := make([]string, len(rows[0]))
		for i, h := range rows[0] {
			headers[i] = strings.TrimSpace(h)
		}

		sheet := Sheet{Name: name, Headers: headers}
		for _, record := range rows[1:] {
			row := recordToRow(headers, record)
			if len(row) == 0 {
				continue
			}
			sheet.Rows = append(sheet.Rows, row)
		}
		wb.sheets = append(wb.sheets, sheet)
	}

	if len(wb.sheets) == 0 {
		return nil, ErrEmptyFile
	}
	return wb, nil
}

func recordToRow(headers []string, record []string) Row {
	row := make(Row)
	for i, header := range headers {
		if header == "" || i >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[i])
		if value == "" {
			continue
		}
		row[header] = value
	}
	return row
}

// DataSheets returns the sheets eligible for import: the reserved
// Definitions sheet and sheets without data rows are excluded.
func (w *Workbook) DataSheets() []Sheet {
	var result []Sheet
	for _, sheet := range w.sheets {
		if strings.EqualFold(strings.TrimSpace(sheet.Name), DefinitionsSheetName) {
			continue
		}
		if len(sheet.Rows) == 0 {
			continue
		}
		result = append(result, sheet)
	}
	return result
}

// Summaries lists the eligible sheets with their row counts, for caller
// selection when more than one sheet qualifies.
func (w *Workbook) Summaries() []Summary {
	sheets := w.DataSheets()
	result := make([]Summary, 0, len(sheets))
	for _, sheet := range sheets {
		result = append(result, Summary{Name: sheet.Name, RowCount: len(sheet.Rows)})
	}
	return result
}

// Select returns the eligible sheets confirmed by name, preserving the
// workbook's enumeration order. An empty selection means all eligible sheets.
func (w *Workbook) Select(names []string) ([]Sheet, error) {
	eligible := w.DataSheets()
	if len(eligible) == 0 {
		return nil, ErrNoDataSheets
	}
	if len(names) == 0 {
		return eligible, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var result []Sheet
	for _, sheet := range eligible {
		if wanted[strings.ToLower(sheet.Name)] {
			result = append(result, sheet)
		}
	}
	if len(result) == 0 {
		return nil, ErrNoDataSheets
	}
	return result, nil
}
