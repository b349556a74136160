package repository

import (
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"github.com/attendly/attendance-backend/internal/admin/domain"
	"github.com/attendly/attendance-backend/pkg/docstore"
	"github.com/attendly/attendance-backend/pkg/errors"
)

// Collections
var (
	employeesColl     = docstore.Collection("employees")
	masterSheetColl   = docstore.Collection("MasterSheet").Doc("Employee-Data").Collection("employees")
	lineManagersColl  = docstore.Collection("line_managers")
	checkRequestsColl = docstore.Collection("check_out_requests")
	deviceTokensColl  = docstore.Collection("fcm_tokens")
)

// Collection groups watched for change events
const (
	GroupCheckRequests = "check_out_requests"
	GroupLineManagers  = "line_managers"
)

// attendanceColl is the per-employee attendance subcollection.
func attendanceColl(employeeID string) docstore.CollectionRef {
	return employeesColl.Doc(employeeID).Collection("attendance")
}

// fields reads loosely typed document values. Spreadsheet imports and older
// clients store numbers where strings are expected and the other way round.
type fields map[string]any

func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func (f fields) boolean(key string) bool {
	b, _ := f[key].(bool)
	return b
}

func (f fields) number(key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return n
		}
	}
	return 0
}

func (f fields) strings(key string) []string {
	raw, ok := f[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return out
}

func (f fields) timeValue(key string) domain.TimeValue {
	return domain.ClassifyTime(f[key])
}

// time returns nil unless the field holds a readable instant.
func (f fields) time(key string) *time.Time {
	instant, ok := domain.Normalizer{}.Normalize(f.timeValue(key))
	if !ok {
		return nil
	}
	t := instant.Time().UTC()
	return &t
}

// storeError maps a store miss to a typed not-found error.
func storeError(err error, resource string) error {
	if stderrors.Is(err, docstore.ErrNotFound) {
		return errors.NotFound(resource)
	}
	return err
}
