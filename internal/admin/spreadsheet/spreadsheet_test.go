package spreadsheet

import (
	"bytes"
	"testing"

	apperrors "github.com/attendly/attendance-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTemplates_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		template Template
		check    func(t *testing.T, rows []Row)
	}{
		{
			name:     "employee",
			template: EmployeeTemplate,
			check: func(t *testing.T, rows []Row) {
				require.Len(t, rows, 1)
				assert.Equal(t, "1234", rows[0].Text(ColPIN))
				assert.Equal(t, "John Doe", rows[0].Text(ColName))
				assert.Equal(t, "01/01/1990", rows[0].Text(ColBirthdate))
			},
		},
		{
			name:     "mastersheet",
			template: MasterSheetTemplate,
			check: func(t *testing.T, rows []Row) {
				require.Len(t, rows, 1)
				assert.Equal(t, "0001", rows[0].Text(ColEmployeeNumber))
				assert.Equal(t, float64(12000), rows[0].Float(ColSalary))
				assert.Equal(t, "Default", rows[0].Text(ColCreatedBy))
			},
		},
		{
			name:     "overtime",
			template: OvertimeTemplate,
			check: func(t *testing.T, rows []Row) {
				require.Len(t, rows, 2)
				assert.Equal(t, "2931", rows[0].Text(ColOvertimeEmployeeNumber))
				assert.Equal(t, "EMP0001", rows[1].Text(ColOvertimeEmployeeNumber))
				assert.Equal(t, "Yes", rows[1].Text(ColOvertime))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.template.XLSX()
			require.NoError(t, err)

			rows, err := ReadRows(bytes.NewReader(data), tt.template.Filename, 0)
			require.NoError(t, err)
			tt.check(t, rows)
		})
	}
}

func TestTemplates_SheetNamesAndWidths(t *testing.T) {
	data, err := OvertimeTemplate.XLSX()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Overtime_Data", f.GetSheetName(0))
	for col, want := range map[string]float64{"A": 15, "B": 30, "C": 10} {
		got, err := f.GetColWidth("Overtime_Data", col)
		require.NoError(t, err)
		assert.Equal(t, want, got, col)
	}

	header, err := f.GetCellValue("Overtime_Data", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Employee Name", header)
}

func TestReadRows_SkipsBlankCellsAndLines(t *testing.T) {
	data, err := Table{
		Headers: []string{"PIN", "Name", " Phone "},
		Rows: [][]any{
			{1234, "Ana", nil},
			{nil, nil, nil},
			{nil, "Ben", 971501234567},
		},
	}.XLSX()
	require.NoError(t, err)

	rows, err := ReadRows(bytes.NewReader(data), "upload.xlsx", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "1234", rows[0].Text("PIN"))
	_, ok := rows[0].String("Phone")
	assert.False(t, ok)

	_, ok = rows[1].String("PIN")
	assert.False(t, ok)
	assert.Equal(t, "971501234567", rows[1].Text("Phone"))
}

func TestReadRows_RowLimit(t *testing.T) {
	data, err := Table{Headers: []string{"PIN"}, Rows: [][]any{{"1"}, {"2"}, {"3"}}}.XLSX()
	require.NoError(t, err)

	_, err = ReadRows(bytes.NewReader(data), "upload.xlsx", 2)
	assert.True(t, apperrors.Is(err, apperrors.ErrTooLarge))

	rows, err := ReadRows(bytes.NewReader(data), "upload.xlsx", 3)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestReadRows_RejectsGarbage(t *testing.T) {
	_, err := ReadRows(bytes.NewReader([]byte("not a workbook")), "upload.xlsx", 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnprocessable))
}

func TestRowsFromGrid(t *testing.T) {
	rows, err := rowsFromGrid([][]string{
		{"Name", "Name", "", "Salary"},
		{"Ana", "A.", "ignored", "12,000"},
	}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"Name": "Ana", "Name_1": "A.", "Salary": "12,000"}, rows[0])

	_, err = rowsFromGrid(nil, 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnprocessable))
}

func TestRow_Accessors(t *testing.T) {
	row := Row{
		"text":    "hello",
		"number":  float64(42),
		"decimal": 1234.5,
		"salary":  "12000 AED",
		"comma":   "12,000",
		"junk":    "n/a",
		"serial":  "32874",
		"date":    "01/15/1990",
	}

	assert.Equal(t, "42", row.Text("number"))
	assert.Equal(t, "1234.5", row.Text("decimal"))
	assert.Equal(t, "", row.Text("missing"))

	assert.Equal(t, 42.0, row.Float("number"))
	assert.Equal(t, 12000.0, row.Float("salary"))
	assert.Equal(t, 12.0, row.Float("comma"))
	assert.Equal(t, 0.0, row.Float("junk"))
	assert.Equal(t, 0.0, row.Float("missing"))

	assert.Equal(t, "01/01/1990", row.Date("serial", "01/02/2006"))
	assert.Equal(t, "01/15/1990", row.Date("date", "01/02/2006"))
	assert.Equal(t, "", row.Date("missing", "01/02/2006"))
}
