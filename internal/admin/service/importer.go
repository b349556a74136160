package service

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/attendly/attendance-backend/internal/admin/domain"
	"github.com/attendly/attendance-backend/internal/admin/events"
	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/internal/admin/spreadsheet"
	"github.com/attendly/attendance-backend/pkg/errors"
	"github.com/attendly/attendance-backend/pkg/logger"
)

// Import modes
const (
	ModeEmployees   = "employees"
	ModeMasterSheet = "mastersheet"
	ModeOvertime    = "overtime"
)

// Outcome is what happened to one imported row.
type Outcome string

const (
	OutcomeInserted  Outcome = "inserted"
	OutcomeUpdated   Outcome = "updated"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeFailed    Outcome = "failed"
)

// RowResult reports one row. Row is 1-based and counts data rows only.
type RowResult struct {
	Row     int     `json:"row"`
	Key     string  `json:"key,omitempty"`
	DocID   string  `json:"docId,omitempty"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
	Error   string  `json:"error,omitempty"`
}

func failed(key string, err error) RowResult {
	return RowResult{Key: key, Outcome: OutcomeFailed, Err: err, Error: err.Error()}
}

// Summary aggregates the results of one import run.
type Summary struct {
	Mode       string      `json:"mode"`
	Total      int         `json:"total"`
	Inserted   int         `json:"inserted"`
	Updated    int         `json:"updated"`
	Duplicates int         `json:"duplicates"`
	NotFound   int         `json:"notFound"`
	Errors     int         `json:"errors"`
	Results    []RowResult `json:"results"`
}

// Successes counts rows that wrote something.
func (s *Summary) Successes() int {
	return s.Inserted + s.Updated
}

func (s *Summary) record(r RowResult) {
	s.Total++
	switch r.Outcome {
	case OutcomeInserted:
		s.Inserted++
	case OutcomeUpdated:
		s.Updated++
	case OutcomeDuplicate:
		s.Duplicates++
	case OutcomeNotFound:
		s.NotFound++
	default:
		s.Errors++
	}
	s.Results = append(s.Results, r)
}

// RandomPIN returns a four digit pin in [1000, 9999].
func RandomPIN() string {
	return strconv.Itoa(1000 + rand.Intn(9000))
}

// Importer reconciles spreadsheet rows against the employee and MasterSheet
// collections. Rows are processed one after another; a failing row never
// stops the run.
type Importer struct {
	employees   *repository.EmployeeRepository
	masterSheet *repository.MasterSheetRepository
	publisher   *events.AdminEventPublisher
	newPIN      func() string
	logger      *logger.Logger
}

// NewImporter creates a new importer
func NewImporter(
	employees *repository.EmployeeRepository,
	masterSheet *repository.MasterSheetRepository,
	publisher *events.AdminEventPublisher,
	log *logger.Logger,
) *Importer {
	return &Importer{
		employees:   employees,
		masterSheet: masterSheet,
		publisher:   publisher,
		newPIN:      RandomPIN,
		logger:      log.WithComponent("importer"),
	}
}

// WithPINGenerator replaces the pin source used for rows without a pin.
func (i *Importer) WithPINGenerator(fn func() string) *Importer {
	i.newPIN = fn
	return i
}

// ImportEmployees adds one employee per row keyed by pin. Rows whose pin is
// already taken are reported as duplicates.
func (i *Importer) ImportEmployees(ctx context.Context, rows []spreadsheet.Row) *Summary {
	return i.run(ctx, ModeEmployees, rows, i.employeeRow)
}

func (i *Importer) employeeRow(ctx context.Context, row spreadsheet.Row) RowResult {
	pin := row.Text(spreadsheet.ColPIN)
	if pin == "" {
		pin = i.newPIN()
	}

	exists, err := i.employees.PINExists(ctx, pin)
	if err != nil {
		return failed(pin, err)
	}
	if exists {
		return RowResult{Key: pin, Outcome: OutcomeDuplicate}
	}

	emp := &repository.Employee{
		PIN:         pin,
		Name:        row.Text(spreadsheet.ColName),
		Designation: row.Text(spreadsheet.ColDesignation),
		Department:  row.Text(spreadsheet.ColDepartment),
		Email:       row.Text(spreadsheet.ColEmail),
		Phone:       row.Text(spreadsheet.ColPhone),
		Country:     row.Text(spreadsheet.ColCountry),
		Birthdate:   row.Date(spreadsheet.ColBirthdate, "01/02/2006"),
	}
	if err := i.employees.Create(ctx, emp); err != nil {
		return failed(pin, err)
	}
	return RowResult{Key: pin, DocID: emp.ID, Outcome: OutcomeInserted}
}

// ImportMasterSheet adds one MasterSheet record per row under
// "EMP" + the padded employee number. Numbers already present in the
// employeeNumber field are reported as duplicates.
func (i *Importer) ImportMasterSheet(ctx context.Context, rows []spreadsheet.Row) *Summary {
	return i.run(ctx, ModeMasterSheet, rows, i.masterSheetRow)
}

func (i *Importer) masterSheetRow(ctx context.Context, row spreadsheet.Row) RowResult {
	number := domain.NormalizeEmployeeNumber(row.Text(spreadsheet.ColEmployeeNumber))
	if number == "" {
		return failed("", errors.BadRequest("employee number is empty"))
	}

	exists, err := i.masterSheet.EmployeeNumberExists(ctx, number)
	if err != nil {
		return failed(number, err)
	}
	if exists {
		return RowResult{Key: number, Outcome: OutcomeDuplicate}
	}

	// The number is used as given, so a prefixed "EMP0007" lands on
	// EMPEMP0007 rather than replacing the record keyed by "0007".
	id := domain.MasterSheetPrefix + number
	emp := &repository.MasterSheetEmployee{
		EmployeeNumber: number,
		EmployeeName:   row.Text(spreadsheet.ColEmployeeName),
		Designation:    row.Text(spreadsheet.ColDesignation),
		Salary:         row.Float(spreadsheet.ColSalary),
		CreatedBy:      row.Text(spreadsheet.ColCreatedBy),
	}
	if err := i.masterSheet.Create(ctx, id, emp); err != nil {
		return failed(number, err)
	}
	return RowResult{Key: number, DocID: id, Outcome: OutcomeInserted}
}

// ImportOvertime flags existing MasterSheet records. Numbers may be given
// with or without the EMP prefix. Unknown numbers are reported, never
// created.
func (i *Importer) ImportOvertime(ctx context.Context, rows []spreadsheet.Row) *Summary {
	return i.run(ctx, ModeOvertime, rows, i.overtimeRow)
}

func (i *Importer) overtimeRow(ctx context.Context, row spreadsheet.Row) RowResult {
	raw := strings.TrimSpace(row.Text(spreadsheet.ColOvertimeEmployeeNumber))
	id := domain.ToMasterSheetID(raw)
	if id == "" {
		return failed("", errors.BadRequest("employee number is empty"))
	}

	label := row.Text(spreadsheet.ColOvertime)
	if label == "" {
		label = repository.DefaultOvertimeLabel
	}

	err := i.masterSheet.SetOvertime(ctx, id, true, label)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return RowResult{Key: raw, DocID: id, Outcome: OutcomeNotFound}
	case err != nil:
		return failed(raw, err)
	}
	return RowResult{Key: raw, DocID: id, Outcome: OutcomeUpdated}
}

type rowFunc func(ctx context.Context, row spreadsheet.Row) RowResult

func (i *Importer) run(ctx context.Context, mode string, rows []spreadsheet.Row, fn rowFunc) *Summary {
	summary := &Summary{Mode: mode, Results: make([]RowResult, 0, len(rows))}

	for n, row := range rows {
		result := i.guard(ctx, row, fn)
		result.Row = n + 1

		switch result.Outcome {
		case OutcomeFailed:
			i.logger.Error().Err(result.Err).
				Str("mode", mode).
				Int("row", result.Row).
				Str("key", result.Key).
				Msg("import row failed")
		case OutcomeDuplicate, OutcomeNotFound:
			i.logger.Info().
				Str("mode", mode).
				Int("row", result.Row).
				Str("key", result.Key).
				Str("outcome", string(result.Outcome)).
				Msg("import row skipped")
		}
		summary.record(result)
	}

	i.logger.Info().
		Str("mode", mode).
		Int("total", summary.Total).
		Int("successes", summary.Successes()).
		Int("errors", summary.Errors).
		Msg("import completed")

	i.publisher.PublishImportCompleted(ctx, events.ImportCounts{
		Mode:       mode,
		Total:      summary.Total,
		Inserted:   summary.Inserted,
		Updated:    summary.Updated,
		Duplicates: summary.Duplicates,
		NotFound:   summary.NotFound,
		Errors:     summary.Errors,
	})

	return summary
}

// guard runs one row and turns a panic into a failed result.
func (i *Importer) guard(ctx context.Context, row spreadsheet.Row, fn rowFunc) (result RowResult) {
	defer func() {
		if r := recover(); r != nil {
			result = failed("", fmt.Errorf("row panicked: %v", r))
		}
	}()
	return fn(ctx, row)
}
