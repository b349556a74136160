// Package spreadsheet reads uploaded workbooks into header-keyed rows and
// writes the import templates and attendance report.
package spreadsheet

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/attendly/attendance-backend/pkg/errors"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Row maps a header label to the cell value under it. Empty cells are left
// out, so a missing key means the cell was blank.
type Row map[string]any

// String returns the cell as text. Numbers are rendered without exponent or
// trailing zeros.
func (r Row) String(col string) (string, bool) {
	switch v := r[col].(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// Text is String with "" for blank cells.
func (r Row) Text(col string) string {
	s, _ := r.String(col)
	return s
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Float reads the leading number of a cell, so "12000 AED" is 12000.
// Blank or non-numeric cells are 0.
func (r Row) Float(col string) float64 {
	if v, ok := r[col].(float64); ok {
		return v
	}
	s, ok := r.String(col)
	if !ok {
		return 0
	}
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

// Date renders Excel date serials with layout. Text cells are returned as
// they are.
func (r Row) Date(col, layout string) string {
	s, ok := r.String(col)
	if !ok {
		return ""
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || serial <= 0 {
		return s
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return s
	}
	return t.Format(layout)
}

// ReadRows parses the first worksheet of an .xlsx or legacy .xls upload.
// The first row is the header. maxRows <= 0 disables the row limit.
func ReadRows(r io.Reader, filename string, maxRows int) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var grid [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		grid, err = readXLS(data)
	default:
		grid, err = readXLSX(data)
	}
	if err != nil {
		return nil, err
	}
	return rowsFromGrid(grid, maxRows)
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, errors.Unprocessable("could not read workbook: " + err.Error())
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, errors.Unprocessable("workbook has no worksheet")
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Unprocessable("could not read workbook: " + err.Error())
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.Unprocessable("workbook has no worksheet")
	}

	// Raw values keep dates as serials and numbers unformatted.
	return file.GetRows(sheetName, excelize.Options{RawCellValue: true})
}

func rowsFromGrid(grid [][]string, maxRows int) ([]Row, error) {
	if len(grid) == 0 {
		return nil, errors.Unprocessable("worksheet is empty")
	}

	headers := headerLabels(grid[0])
	rows := make([]Row, 0, len(grid)-1)
	for _, line := range grid[1:] {
		row := Row{}
		for i, cell := range line {
			if i >= len(headers) || headers[i] == "" || cell == "" {
				continue
			}
			row[headers[i]] = cell
		}
		// blank lines are skipped
		if len(row) == 0 {
			continue
		}
		if maxRows > 0 && len(rows) == maxRows {
			return nil, errors.TooLarge(fmt.Sprintf("workbook has more than %d rows", maxRows))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// headerLabels trims the header cells and suffixes repeats: a second
// "Name" column becomes "Name_1".
func headerLabels(cells []string) []string {
	seen := map[string]int{}
	labels := make([]string, len(cells))
	for i, cell := range cells {
		label := strings.TrimSpace(cell)
		if label == "" {
			continue
		}
		if n, dup := seen[label]; dup {
			seen[label] = n + 1
			label = fmt.Sprintf("%s_%d", label, n+1)
		} else {
			seen[label] = 0
		}
		labels[i] = label
	}
	return labels
}
