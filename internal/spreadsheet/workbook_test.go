package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type testSheet struct {
	name string
	rows [][]string
}

func buildWorkbook(t *testing.T, sheets []testSheet) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.name))
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for j, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet.name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestSupported(t *testing.T) {
	t.Run("accepts spreadsheet extensions", func(t *testing.T) {
		assert.True(t, Supported("contacts.xlsx", ""))
		assert.True(t, Supported("contacts.XLSX", ""))
		assert.True(t, Supported("contacts.xls", ""))
		assert.True(t, Supported("contacts.csv", ""))
	})

	t.Run("accepts declared MIME types", func(t *testing.T) {
		assert.True(t, Supported("upload", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
		assert.True(t, Supported("upload", "text/csv; charset=utf-8"))
	})

	t.Run("rejects everything else", func(t *testing.T) {
		assert.False(t, Supported("contacts.pdf", "application/pdf"))
		assert.False(t, Supported("contacts.txt", "text/plain"))
		assert.False(t, Supported("contacts", ""))
	})
}

func TestOpen_CSV(t *testing.T) {
	t.Run("parses a csv into a single unnamed sheet", func(t *testing.T) {
		data := "Name,Email\nAda Osei,ada@example.com\nJordan Blake,jordan@example.com\n"
		wb, err := Open(strings.NewReader(data), "contacts.csv", "text/csv")
		require.NoError(t, err)

		sheets := wb.DataSheets()
		require.Len(t, sheets, 1)
		assert.Empty(t, sheets[0].Name)
		assert.Equal(t, []string{"Name", "Email"}, sheets[0].Headers)
		require.Len(t, sheets[0].Rows, 2)
		assert.Equal(t, "Ada Osei", sheets[0].Rows[0]["Name"])
	})

	t.Run("skips malformed lines", func(t *testing.T) {
		data := "Name,Email\nAda Osei,ada@example.com\n\"broken\nJordan Blake,jordan@example.com\n"
		wb, err := Open(strings.NewReader(data), "contacts.csv", "")
		require.NoError(t, err)

		sheets := wb.DataSheets()
		require.Len(t, sheets, 1)
		assert.GreaterOrEqual(t, len(sheets[0].Rows), 1)
		assert.Equal(t, "Ada Osei", sheets[0].Rows[0]["Name"])
	})

	t.Run("empty file yields ErrEmptyFile", func(t *testing.T) {
		_, err := Open(strings.NewReader(""), "contacts.csv", "")
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("drops empty cells from rows", func(t *testing.T) {
		data := "Name,Email\nAda Osei,\n"
		wb, err := Open(strings.NewReader(data), "contacts.csv", "")
		require.NoError(t, err)

		sheets := wb.DataSheets()
		require.Len(t, sheets, 1)
		_, present := sheets[0].Rows[0]["Email"]
		assert.False(t, present)
	})
}

func TestOpen_Excel(t *testing.T) {
	t.Run("parses all sheets", func(t *testing.T) {
		buf := buildWorkbook(t, []testSheet{
			{name: "Investors", rows: [][]string{
				{"Name", "Company"},
				{"Ada Osei", "Northgate"},
			}},
		})

		wb, err := Open(buf, "contacts.xlsx", "")
		require.NoError(t, err)

		sheets := wb.DataSheets()
		require.Len(t, sheets, 1)
		assert.Equal(t, "Investors", sheets[0].Name)
		assert.Equal(t, "Northgate", sheets[0].Rows[0]["Company"])
	})

	t.Run("rejects unsupported uploads before parsing", func(t *testing.T) {
		_, err := Open(strings.NewReader("hello"), "notes.txt", "text/plain")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("rejects files that are not workbooks", func(t *testing.T) {
		_, err := Open(strings.NewReader("not a zip archive"), "contacts.xlsx", "")
		assert.Error(t, err)
	})
}

func TestWorkbook_DataSheets(t *testing.T) {
	t.Run("excludes the definitions sheet case-insensitively", func(t *testing.T) {
		buf := buildWorkbook(t, []testSheet{
			{name: "Contacts", rows: [][]string{
				{"Name"},
				{"Ada Osei"},
			}},
			{name: "DEFINITIONS", rows: [][]string{
				{"Term", "Meaning"},
				{"Priority", "1 is most urgent"},
			}},
		})

		wb, err := Open(buf, "contacts.xlsx", "")
		require.NoError(t, err)

		sheets := wb.DataSheets()
		require.Len(t, sheets, 1)
		assert.Equal(t, "Contacts", sheets[0].Name)
	})

	t.Run("excludes sheets without data rows", func(t *testing.T) {
		buf := buildWorkbook(t, []testSheet{
			{name: "Contacts", rows: [][]string{
				{"Name"},
				{"Ada Osei"},
			}},
			{name: "Empty", rows: [][]string{
				{"Name"},
			}},
		})

		wb, err := Open(buf, "contacts.xlsx", "")
		require.NoError(t, err)

		sheets := wb.DataSheets()
		require.Len(t, sheets, 1)
		assert.Equal(t, "Contacts", sheets[0].Name)
	})
}

func TestWorkbook_Select(t *testing.T) {
	multiSheet := func(t *testing.T) *Workbook {
		buf := buildWorkbook(t, []testSheet{
			{name: "Q1", rows: [][]string{{"Name"}, {"A"}}},
			{name: "Q2", rows: [][]string{{"Name"}, {"B"}}},
			{name: "Q3", rows: [][]string{{"Name"}, {"C"}}},
		})
		wb, err := Open(buf, "contacts.xlsx", "")
		require.NoError(t, err)
		return wb
	}

	t.Run("empty selection means all data sheets", func(t *testing.T) {
		sheets, err := multiSheet(t).Select(nil)
		require.NoError(t, err)
		assert.Len(t, sheets, 3)
	})

	t.Run("selection is case-insensitive", func(t *testing.T) {
		sheets, err := multiSheet(t).Select([]string{"q1", " Q3 "})
		require.NoError(t, err)
		require.Len(t, sheets, 2)
		assert.Equal(t, "Q1", sheets[0].Name)
		assert.Equal(t, "Q3", sheets[1].Name)
	})

	t.Run("unknown selection fails", func(t *testing.T) {
		_, err := multiSheet(t).Select([]string{"Q9"})
		assert.ErrorIs(t, err, ErrNoDataSheets)
	})

	t.Run("summaries report row counts", func(t *testing.T) {
		summaries := multiSheet(t).Summaries()
		require.Len(t, summaries, 3)
		for _, s := range summaries {
			assert.Equal(t, 1, s.RowCount)
		}
	})
}
