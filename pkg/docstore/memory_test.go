package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPaths(t *testing.T) {
	ref := Collection("MasterSheet").Doc("Employee-Data").Collection("employees").Doc("EMP0007")

	assert.Equal(t, "MasterSheet/Employee-Data/employees/EMP0007", ref.Path())
	assert.Equal(t, "EMP0007", ref.ID())
	assert.Equal(t, "employees", ref.Parent().ID())
	assert.Equal(t, "MasterSheet/Employee-Data/employees", ref.Parent().Path())

	parent, ok := ref.Parent().Parent()
	require.True(t, ok)
	assert.Equal(t, "MasterSheet/Employee-Data", parent.Path())

	_, ok = Collection("employees").Parent()
	assert.False(t, ok)
}

func TestPaths_DoNotAlias(t *testing.T) {
	base := Collection("employees").Doc("E1").Collection("attendance")
	a := base.Doc("2024-01-01")
	b := base.Doc("2024-01-02")

	assert.Equal(t, "employees/E1/attendance/2024-01-01", a.Path())
	assert.Equal(t, "employees/E1/attendance/2024-01-02", b.Path())
}

func TestDoc(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"employees/E1", false},
		{"/employees/E1/attendance/2024-01-01/", false},
		{"employees", true},
		{"employees//attendance/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := Doc(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMemoryStore_SetGetNormalizesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 3, 1, 9, 0, 0, 500_000_000, time.UTC)
	s.SetClock(fixedClock(now))

	ref := Collection("employees").Doc("E1")
	require.NoError(t, s.Set(ctx, ref, map[string]any{
		"pin":       "1234",
		"age":       42,
		"createdAt": ServerTimestamp,
		"skip":      DeleteField,
	}))

	snap, err := s.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "1234", snap.String("pin"))
	assert.Equal(t, float64(42), snap.Data["age"])
	assert.Equal(t, map[string]any{"seconds": float64(now.Unix()), "nanoseconds": float64(500_000_000)}, snap.Data["createdAt"])
	assert.NotContains(t, snap.Data, "skip")
	assert.Equal(t, now, snap.CreateTime)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), Collection("employees").Doc("nope"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UpdateMergesAndRequiresExisting(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ref := Collection("employees").Doc("E1")

	err := s.Update(ctx, ref, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Set(ctx, ref, map[string]any{"name": "Ana", "pin": "1111", "lineManagerId": "LM1"}))
	require.NoError(t, s.Update(ctx, ref, map[string]any{"name": "Ana B", "lineManagerId": DeleteField}))

	snap, err := s.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ana B", "pin": "1111"}, snap.Data)
}

func TestMemoryStore_QueryFiltersOrdersAndLimits(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	coll := Collection("employees").Doc("E1").Collection("attendance")

	for _, d := range []string{"2024-01-03", "2024-01-01", "2024-01-02"} {
		require.NoError(t, s.Set(ctx, coll.Doc(d), map[string]any{"date": d, "location": "HQ"}))
	}
	require.NoError(t, s.Set(ctx, coll.Doc("nodate"), map[string]any{"location": "HQ"}))
	// a document in a sibling subcollection must not leak into the query
	require.NoError(t, s.Set(ctx, Collection("employees").Doc("E2").Collection("attendance").Doc("2024-01-05"), map[string]any{"date": "2024-01-05"}))

	got, err := s.Query(ctx, coll, Query{OrderBy: "date", Desc: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-03", got[0].ID())
	assert.Equal(t, "2024-01-02", got[1].ID())

	got, err = s.Query(ctx, coll, Eq("date", "2024-01-01"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-01", got[0].ID())

	all, err := s.List(ctx, coll)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemoryStore_QueryEqualityIsTypeStrict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	coll := Collection("employees")
	require.NoError(t, s.Set(ctx, coll.Doc("a"), map[string]any{"pin": "0007"}))
	require.NoError(t, s.Set(ctx, coll.Doc("b"), map[string]any{"pin": 7}))

	got, err := s.Query(ctx, coll, Eq("pin", "0007"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID())

	got, err = s.Query(ctx, coll, Eq("pin", 7))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID())
}

func TestMemoryStore_Add(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ref, err := s.Add(ctx, Collection("line_managers"), map[string]any{"managerId": "EMP0001"})
	require.NoError(t, err)
	assert.Equal(t, "line_managers", ref.Parent().Path())
	assert.NotEmpty(t, ref.ID())

	snap, err := s.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "EMP0001", snap.String("managerId"))
}

func TestMemoryStore_CommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	coll := Collection("MasterSheet").Doc("Employee-Data").Collection("employees")
	for _, id := range []string{"EMP0001", "EMP0002", "EMP0003"} {
		require.NoError(t, s.Set(ctx, coll.Doc(id), map[string]any{"hasOvertime": false}))
	}

	boom := errors.New("network down")
	s.FailWrite = func(op WriteOp, ref DocumentRef) error {
		if ref.ID() == "EMP0003" {
			return boom
		}
		return nil
	}

	writes := []Write{
		UpdateWrite(coll.Doc("EMP0001"), map[string]any{"hasOvertime": true}),
		UpdateWrite(coll.Doc("EMP0002"), map[string]any{"hasOvertime": true}),
		UpdateWrite(coll.Doc("EMP0003"), map[string]any{"hasOvertime": true}),
	}
	assert.ErrorIs(t, s.Commit(ctx, writes), boom)

	for _, id := range []string{"EMP0001", "EMP0002", "EMP0003"} {
		snap, err := s.Get(ctx, coll.Doc(id))
		require.NoError(t, err)
		assert.Equal(t, false, snap.Data["hasOvertime"], id)
	}

	s.FailWrite = nil
	require.NoError(t, s.Commit(ctx, writes))
	for _, id := range []string{"EMP0001", "EMP0002", "EMP0003"} {
		snap, err := s.Get(ctx, coll.Doc(id))
		require.NoError(t, err)
		assert.Equal(t, true, snap.Data["hasOvertime"], id)
	}
}

func TestMemoryStore_CommitMissingUpdateRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	coll := Collection("employees")
	require.NoError(t, s.Set(ctx, coll.Doc("a"), map[string]any{"n": 1}))

	err := s.Commit(ctx, []Write{
		UpdateWrite(coll.Doc("a"), map[string]any{"n": 2}),
		UpdateWrite(coll.Doc("missing"), map[string]any{"n": 2}),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	snap, err := s.Get(ctx, coll.Doc("a"))
	require.NoError(t, err)
	assert.Equal(t, float64(1), snap.Data["n"])
}

func TestMemoryStore_SnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ref := Collection("line_managers").Doc("LM1")
	require.NoError(t, s.Set(ctx, ref, map[string]any{"teamMembers": []string{"0001"}}))

	snap, err := s.Get(ctx, ref)
	require.NoError(t, err)
	snap.Data["teamMembers"].([]any)[0] = "9999"

	again, err := s.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []any{"0001"}, again.Data["teamMembers"])
}

func TestCompareValues_OrdersTimestampsChronologically(t *testing.T) {
	earlier := map[string]any{"seconds": float64(100), "nanoseconds": float64(900)}
	later := map[string]any{"seconds": float64(101), "nanoseconds": float64(0)}

	assert.Negative(t, compareValues(earlier, later))
	assert.Positive(t, compareValues(later, earlier))
	assert.Zero(t, compareValues(earlier, earlier))
	assert.Negative(t, compareValues("2024-01-01", float64(1)))
}

func TestTimestamp_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)
	assert.Equal(t, now, TimestampOf(now).ToTime())
}
