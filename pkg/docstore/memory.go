package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memDoc struct {
	data       map[string]any
	createTime time.Time
	updateTime time.Time
}

// MemoryStore keeps documents in process. It backs handler and service
// tests and local runs without Postgres.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*memDoc
	now  func() time.Time

	// FailWrite, when set, is consulted before every write including each
	// element of a batch. A non-nil error aborts that write.
	FailWrite func(op WriteOp, ref DocumentRef) error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]*memDoc),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the commit time source.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *MemoryStore) Get(ctx context.Context, ref DocumentRef) (*Snapshot, error) {
	if err := validate(ref); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[ref.Path()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref.Path())
	}
	return snapshotOf(ref, doc), nil
}

func (s *MemoryStore) List(ctx context.Context, coll CollectionRef) ([]*Snapshot, error) {
	return s.Query(ctx, coll, Query{})
}

func (s *MemoryStore) Query(ctx context.Context, coll CollectionRef, q Query) ([]*Snapshot, error) {
	where := make([]Filter, 0, len(q.Where))
	for _, f := range q.Where {
		if _, err := encodeValue(f.Value); err != nil {
			return nil, err
		}
		norm, err := normalize(map[string]any{"v": f.Value})
		if err != nil {
			return nil, err
		}
		where = append(where, Filter{Field: f.Field, Value: norm["v"]})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := coll.Path() + "/"
	var out []*Snapshot
	for path, doc := range s.docs {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		if !matches(doc.data, where) {
			continue
		}
		if q.OrderBy != "" {
			if _, ok := doc.data[q.OrderBy]; !ok {
				continue
			}
		}
		out = append(out, snapshotOf(coll.Doc(rest), doc))
	}

	sort.Slice(out, func(i, j int) bool {
		if q.OrderBy != "" {
			c := compareValues(out[i].Data[q.OrderBy], out[j].Data[q.OrderBy])
			if q.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return out[i].Ref.Path() < out[j].Ref.Path()
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Add(ctx context.Context, coll CollectionRef, data map[string]any) (DocumentRef, error) {
	ref := coll.Doc(uuid.NewString())
	if err := s.Commit(ctx, []Write{SetWrite(ref, data)}); err != nil {
		return DocumentRef{}, err
	}
	return ref, nil
}

func (s *MemoryStore) Set(ctx context.Context, ref DocumentRef, data map[string]any) error {
	return s.Commit(ctx, []Write{SetWrite(ref, data)})
}

func (s *MemoryStore) Update(ctx context.Context, ref DocumentRef, fields map[string]any) error {
	return s.Commit(ctx, []Write{UpdateWrite(ref, fields)})
}

func (s *MemoryStore) Delete(ctx context.Context, ref DocumentRef) error {
	return s.Commit(ctx, []Write{DeleteWrite(ref)})
}

// Commit applies writes to a copy of the document map and swaps it in only
// when every write succeeded.
func (s *MemoryStore) Commit(ctx context.Context, writes []Write) error {
	for _, w := range writes {
		if err := validate(w.Ref); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next := make(map[string]*memDoc, len(s.docs)+len(writes))
	for k, v := range s.docs {
		next[k] = v
	}

	for _, w := range writes {
		if s.FailWrite != nil {
			if err := s.FailWrite(w.Op, w.Ref); err != nil {
				return err
			}
		}
		path := w.Ref.Path()

		switch w.Op {
		case OpSet:
			resolved, _ := resolve(w.Data, now)
			data, err := normalize(resolved)
			if err != nil {
				return err
			}
			created := now
			if prev, ok := next[path]; ok {
				created = prev.createTime
			}
			next[path] = &memDoc{data: data, createTime: created, updateTime: now}

		case OpUpdate:
			prev, ok := next[path]
			if !ok {
				return fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			resolved, deleted := resolve(w.Data, now)
			merged := cloneMap(prev.data)
			for k, v := range resolved {
				merged[k] = v
			}
			for _, k := range deleted {
				delete(merged, k)
			}
			data, err := normalize(merged)
			if err != nil {
				return err
			}
			next[path] = &memDoc{data: data, createTime: prev.createTime, updateTime: now}

		case OpDelete:
			delete(next, path)

		default:
			return fmt.Errorf("unknown write op %q", w.Op)
		}
	}

	s.docs = next
	return nil
}

// Len returns the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func snapshotOf(ref DocumentRef, doc *memDoc) *Snapshot {
	return &Snapshot{
		Ref:        ref,
		Data:       cloneMap(doc.data),
		CreateTime: doc.createTime,
		UpdateTime: doc.updateTime,
	}
}

func matches(data map[string]any, where []Filter) bool {
	for _, f := range where {
		v, ok := data[f.Field]
		if !ok || !equalValues(v, f.Value) {
			return false
		}
	}
	return true
}
