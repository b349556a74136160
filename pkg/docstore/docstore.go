// Package docstore is a small hierarchical document database: collections of
// JSON documents addressed by slash separated paths, with equality queries,
// single-field ordering and atomic batches.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by Get and Update when no document exists at the path.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidPath is returned for paths that do not address a document.
	ErrInvalidPath = errors.New("invalid document path")
)

// Store is the document database used by every service.
type Store interface {
	Get(ctx context.Context, ref DocumentRef) (*Snapshot, error)
	Query(ctx context.Context, coll CollectionRef, q Query) ([]*Snapshot, error)
	List(ctx context.Context, coll CollectionRef) ([]*Snapshot, error)
	Add(ctx context.Context, coll CollectionRef, data map[string]any) (DocumentRef, error)
	Set(ctx context.Context, ref DocumentRef, data map[string]any) error
	// Update merges top-level fields into an existing document.
	Update(ctx context.Context, ref DocumentRef, fields map[string]any) error
	Delete(ctx context.Context, ref DocumentRef) error
	// Commit applies all writes or none.
	Commit(ctx context.Context, writes []Write) error
}

// Snapshot is a document as read from the store.
type Snapshot struct {
	Ref        DocumentRef
	Data       map[string]any
	CreateTime time.Time
	UpdateTime time.Time
}

// ID returns the last path segment.
func (s *Snapshot) ID() string {
	return s.Ref.ID()
}

// String returns the field as a string, or "" when missing or not a string.
func (s *Snapshot) String(field string) string {
	v, _ := s.Data[field].(string)
	return v
}

// Filter is an equality predicate on one top-level field.
type Filter struct {
	Field string
	Value any
}

// Query selects documents of one collection. Documents missing the OrderBy
// field are excluded, as in most document databases.
type Query struct {
	Where   []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Eq is shorthand for a single-filter query.
func Eq(field string, value any) Query {
	return Query{Where: []Filter{{Field: field, Value: value}}}
}

// WriteOp identifies a batched write.
type WriteOp string

const (
	OpSet    WriteOp = "set"
	OpUpdate WriteOp = "update"
	OpDelete WriteOp = "delete"
)

// Write is one element of an atomic batch.
type Write struct {
	Op   WriteOp
	Ref  DocumentRef
	Data map[string]any
}

func SetWrite(ref DocumentRef, data map[string]any) Write {
	return Write{Op: OpSet, Ref: ref, Data: data}
}

func UpdateWrite(ref DocumentRef, fields map[string]any) Write {
	return Write{Op: OpUpdate, Ref: ref, Data: fields}
}

func DeleteWrite(ref DocumentRef) Write {
	return Write{Op: OpDelete, Ref: ref}
}

// CollectionRef addresses a collection. Its segment count is odd.
type CollectionRef struct {
	segments []string
}

// DocumentRef addresses a document. Its segment count is even.
type DocumentRef struct {
	segments []string
}

// Collection returns a root collection.
func Collection(id string) CollectionRef {
	return CollectionRef{segments: []string{id}}
}

// Doc returns the document id inside c.
func (c CollectionRef) Doc(id string) DocumentRef {
	return DocumentRef{segments: appendSegment(c.segments, id)}
}

// Path is the slash joined path, e.g. "employees/E1/attendance".
func (c CollectionRef) Path() string {
	return strings.Join(c.segments, "/")
}

// ID is the collection's own name, which is also its collection group.
func (c CollectionRef) ID() string {
	if len(c.segments) == 0 {
		return ""
	}
	return c.segments[len(c.segments)-1]
}

// Parent returns the owning document of a subcollection.
func (c CollectionRef) Parent() (DocumentRef, bool) {
	if len(c.segments) < 3 {
		return DocumentRef{}, false
	}
	return DocumentRef{segments: c.segments[:len(c.segments)-1]}, true
}

// Collection returns the subcollection id under d.
func (d DocumentRef) Collection(id string) CollectionRef {
	return CollectionRef{segments: appendSegment(d.segments, id)}
}

func (d DocumentRef) Path() string {
	return strings.Join(d.segments, "/")
}

func (d DocumentRef) ID() string {
	if len(d.segments) == 0 {
		return ""
	}
	return d.segments[len(d.segments)-1]
}

// Parent returns the collection that holds d.
func (d DocumentRef) Parent() CollectionRef {
	if len(d.segments) == 0 {
		return CollectionRef{}
	}
	return CollectionRef{segments: d.segments[:len(d.segments)-1]}
}

// IsZero reports whether d was never assigned.
func (d DocumentRef) IsZero() bool {
	return len(d.segments) == 0
}

func (d DocumentRef) String() string {
	return d.Path()
}

// Doc parses a document path such as "employees/E1/attendance/2024-01-02".
func Doc(path string) (DocumentRef, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments)%2 != 0 {
		return DocumentRef{}, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, s := range segments {
		if s == "" {
			return DocumentRef{}, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return DocumentRef{segments: segments}, nil
}

func appendSegment(segments []string, id string) []string {
	out := make([]string, len(segments), len(segments)+1)
	copy(out, segments)
	return append(out, id)
}

func validate(ref DocumentRef) error {
	if len(ref.segments) == 0 || len(ref.segments)%2 != 0 {
		return fmt.Errorf("%w: %q", ErrInvalidPath, ref.Path())
	}
	for _, s := range ref.segments {
		if s == "" || strings.Contains(s, "/") {
			return fmt.Errorf("%w: %q", ErrInvalidPath, ref.Path())
		}
	}
	return nil
}
