package spreadsheet

// Column labels read by the importers
const (
	ColPIN         = "PIN"
	ColName        = "Name"
	ColDesignation = "Designation"
	ColDepartment  = "Department"
	ColEmail       = "Email"
	ColPhone       = "Phone"
	ColCountry     = "Country"
	ColBirthdate   = "Birthdate"

	ColEmployeeNumber         = "EmployeeNumber"
	ColEmployeeName           = "Employee Name"
	ColSalary                 = "Salary"
	ColCreatedBy              = "Created by"
	ColOvertimeEmployeeNumber = "Employee Number"
	ColOvertime               = "Overtime"
)

// Template is a downloadable example workbook for one import.
type Template struct {
	Filename string
	Table
}

var (
	EmployeeTemplate = Template{
		Filename: "employee_template.xlsx",
		Table: Table{
			Sheet:   "Employees",
			Headers: []string{ColPIN, ColName, ColDesignation, ColDepartment, ColEmail, ColPhone, ColCountry, ColBirthdate},
			Rows: [][]any{
				{"1234", "John Doe", "Software Developer", "IT Department", "john@example.com", "+971501234567", "UAE", "01/01/1990"},
			},
		},
	}

	MasterSheetTemplate = Template{
		Filename: "mastersheet_employee_template.xlsx",
		Table: Table{
			Sheet:   "MasterSheet_Employees",
			Headers: []string{ColEmployeeNumber, ColEmployeeName, ColDesignation, ColSalary, ColCreatedBy},
			Rows: [][]any{
				{"0001", "John Doe", "Manager", 12000, "Default"},
			},
		},
	}

	OvertimeTemplate = Template{
		Filename: "overtime_template.xlsx",
		Table: Table{
			Sheet:   "Overtime_Data",
			Headers: []string{ColOvertimeEmployeeNumber, ColEmployeeName, ColOvertime},
			Rows: [][]any{
				{"2931", "Hamada Moftah Rabiei Kamel", "Yes"},
				{"EMP0001", "John Doe", "Yes"},
			},
			Widths: []float64{15, 30, 10},
		},
	}
)

// AttendanceReportHeaders are the columns of the attendance export.
var AttendanceReportHeaders = []string{"Employee", "Date", "Check In", "Check Out", "Total Hours", "Status", "Location"}
