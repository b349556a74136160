package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/attendly/attendance-backend/pkg/database"
	apperrors "github.com/attendly/attendance-backend/pkg/errors"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/attendly/attendance-backend/pkg/testutil"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var documentColumns = []string{"path", "data", "create_time", "update_time"}

func newPostgresStore(t *testing.T) (*PostgresStore, *testutil.MockDB, time.Time) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	log := logger.Nop()
	store := NewPostgresStore(database.Wrap(mockDB.DB, log), log)
	now := time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC)
	store.now = fixedClock(now)
	return store, mockDB, now
}

func TestPostgresStore_Get(t *testing.T) {
	store, mockDB, now := newPostgresStore(t)
	ctx := context.Background()

	mockDB.ExpectQuery(selectDocuments + ` WHERE path = $1`).
		WithArgs("employees/E1").
		WillReturnRows(testutil.MockRows(documentColumns...).
			AddRow("employees/E1", []byte(`{"pin":"1234","name":"Ana"}`), now, now))

	snap, err := store.Get(ctx, Collection("employees").Doc("E1"))
	require.NoError(t, err)
	assert.Equal(t, "E1", snap.ID())
	assert.Equal(t, "1234", snap.String("pin"))
	assert.Equal(t, now, snap.UpdateTime)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	store, mockDB, _ := newPostgresStore(t)

	mockDB.ExpectQuery(selectDocuments + ` WHERE path = $1`).
		WithArgs("employees/missing").
		WillReturnRows(testutil.MockRows(documentColumns...))

	_, err := store.Get(context.Background(), Collection("employees").Doc("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
	mockDB.ExpectationsWereMet(t)
}

func TestBuildQuery(t *testing.T) {
	coll := Collection("employees").Doc("E1").Collection("attendance")

	tests := []struct {
		name     string
		query    Query
		wantSQL  string
		wantArgs int
	}{
		{
			name:     "plain list",
			query:    Query{},
			wantSQL:  selectDocuments + ` WHERE collection = $1 ORDER BY path`,
			wantArgs: 1,
		},
		{
			name:     "equality",
			query:    Eq("date", "2024-01-01"),
			wantSQL:  selectDocuments + ` WHERE collection = $1 AND data -> $2::text = $3::jsonb ORDER BY path`,
			wantArgs: 3,
		},
		{
			name:     "ordered with limit",
			query:    Query{OrderBy: "date", Desc: true, Limit: 30},
			wantSQL:  selectDocuments + ` WHERE collection = $1 AND data -> $2::text IS NOT NULL ORDER BY data -> $2::text DESC, path LIMIT $3`,
			wantArgs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := buildQuery(coll, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Len(t, args, tt.wantArgs)
			assert.Equal(t, "employees/E1/attendance", args[0])
		})
	}
}

func TestBuildQuery_RejectsSentinelFilter(t *testing.T) {
	_, _, err := buildQuery(Collection("employees"), Eq("createdAt", ServerTimestamp))
	assert.Error(t, err)
}

func TestPostgresStore_Query(t *testing.T) {
	store, mockDB, now := newPostgresStore(t)
	coll := Collection("employees").Doc("E1").Collection("attendance")

	mockDB.ExpectQuery(selectDocuments+` WHERE collection = $1 AND data -> $2::text = $3::jsonb AND data -> $4::text IS NOT NULL ORDER BY data -> $4::text DESC, path LIMIT $5`).
		WithArgs("employees/E1/attendance", "location", testutil.JSONArg{Want: "HQ"}, "date", 30).
		WillReturnRows(testutil.MockRows(documentColumns...).
			AddRow("employees/E1/attendance/2024-01-02", []byte(`{"date":"2024-01-02","location":"HQ"}`), now, now).
			AddRow("employees/E1/attendance/2024-01-01", []byte(`{"date":"2024-01-01","location":"HQ"}`), now, now))

	got, err := store.Query(context.Background(), coll, Query{
		Where:   []Filter{{Field: "location", Value: "HQ"}},
		OrderBy: "date",
		Desc:    true,
		Limit:   30,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-02", got[0].ID())
	assert.Equal(t, "employees/E1/attendance", got[0].Ref.Parent().Path())
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_Set(t *testing.T) {
	store, mockDB, now := newPostgresStore(t)

	mockDB.ExpectExec(upsertDocument).
		WithArgs("employees/E1", "employees", "employees", "E1",
			testutil.JSONArg{Want: map[string]any{
				"pin":       "1234",
				"createdAt": map[string]any{"seconds": now.Unix(), "nanoseconds": 0},
			}},
			testutil.AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Set(context.Background(), Collection("employees").Doc("E1"), map[string]any{
		"pin":       "1234",
		"createdAt": ServerTimestamp,
	})
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_AddMapsUniqueViolation(t *testing.T) {
	store, mockDB, _ := newPostgresStore(t)

	mockDB.ExpectExec(insertDocument).
		WithArgs(testutil.AnyUUID{}, "line_managers", "line_managers", testutil.AnyUUID{},
			testutil.JSONArg{Want: map[string]any{"managerId": "EMP0001"}}, testutil.AnyTime{}).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "documents_pkey"})

	_, err := store.Add(context.Background(), Collection("line_managers"), map[string]any{"managerId": "EMP0001"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_AddReadsClockOnce(t *testing.T) {
	store, mockDB, now := newPostgresStore(t)
	calls := 0
	store.now = func() time.Time {
		calls++
		return now.Add(time.Duration(calls-1) * time.Second)
	}

	mockDB.ExpectExec(insertDocument).
		WithArgs(testutil.AnyUUID{}, "check_out_requests", "check_out_requests", testutil.AnyUUID{},
			testutil.JSONArg{Want: map[string]any{
				"status":      "pending",
				"requestTime": map[string]any{"seconds": now.Unix(), "nanoseconds": 0},
			}},
			now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := store.Add(context.Background(), Collection("check_out_requests"), map[string]any{
		"status":      "pending",
		"requestTime": ServerTimestamp,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_Update(t *testing.T) {
	store, mockDB, _ := newPostgresStore(t)
	path := "MasterSheet/Employee-Data/employees/EMP0007"

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(lockDocument).
		WithArgs(path).
		WillReturnRows(testutil.MockRows("data").AddRow([]byte(`{"employeeNumber":"0007","hasOvertime":false,"lineManagerId":"LM1"}`)))
	mockDB.ExpectExec(updateDocument).
		WithArgs(path, testutil.JSONArg{Want: map[string]any{"employeeNumber": "0007", "hasOvertime": true}}, testutil.AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	ref := Collection("MasterSheet").Doc("Employee-Data").Collection("employees").Doc("EMP0007")
	err := store.Update(context.Background(), ref, map[string]any{"hasOvertime": true, "lineManagerId": DeleteField})
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_UpdateMissingRollsBack(t *testing.T) {
	store, mockDB, _ := newPostgresStore(t)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(lockDocument).
		WithArgs("employees/ghost").
		WillReturnRows(testutil.MockRows("data"))
	mockDB.ExpectRollback()

	err := store.Update(context.Background(), Collection("employees").Doc("ghost"), map[string]any{"x": 1})
	assert.ErrorIs(t, err, ErrNotFound)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_Commit(t *testing.T) {
	store, mockDB, _ := newPostgresStore(t)

	mockDB.ExpectBegin()
	mockDB.ExpectExec(upsertDocument).
		WithArgs("employees/E1", "employees", "employees", "E1", testutil.JSONArg{Want: map[string]any{"n": 1}}, testutil.AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery(lockDocument).
		WithArgs("employees/E2").
		WillReturnRows(testutil.MockRows("data").AddRow([]byte(`{"n":1}`)))
	mockDB.ExpectExec(updateDocument).
		WithArgs("employees/E2", testutil.JSONArg{Want: map[string]any{"n": 2}}, testutil.AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec(deleteDocument).
		WithArgs("employees/E3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	coll := Collection("employees")
	err := store.Commit(context.Background(), []Write{
		SetWrite(coll.Doc("E1"), map[string]any{"n": 1}),
		UpdateWrite(coll.Doc("E2"), map[string]any{"n": 2}),
		DeleteWrite(coll.Doc("E3")),
	})
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_CommitRollsBackOnFailure(t *testing.T) {
	store, mockDB, _ := newPostgresStore(t)
	boom := errors.New("connection reset")

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(lockDocument).
		WithArgs("employees/E1").
		WillReturnRows(testutil.MockRows("data").AddRow([]byte(`{}`)))
	mockDB.ExpectExec(updateDocument).
		WithArgs("employees/E1", testutil.JSONArg{Want: map[string]any{"hasOvertime": true}}, testutil.AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery(lockDocument).
		WithArgs("employees/E2").
		WillReturnError(boom)
	mockDB.ExpectRollback()

	coll := Collection("employees")
	err := store.Commit(context.Background(), []Write{
		UpdateWrite(coll.Doc("E1"), map[string]any{"hasOvertime": true}),
		UpdateWrite(coll.Doc("E2"), map[string]any{"hasOvertime": true}),
	})
	assert.ErrorIs(t, err, boom)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	store, mockDB, _ := newPostgresStore(t)

	mockDB.ExpectExec(Schema).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	mockDB.ExpectationsWereMet(t)
}
