package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/attendly/attendance-backend/pkg/database"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

// Schema creates the single table every collection lives in.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	path             TEXT PRIMARY KEY,
	collection       TEXT NOT NULL,
	collection_group TEXT NOT NULL,
	doc_id           TEXT NOT NULL,
	data             JSONB NOT NULL DEFAULT '{}'::jsonb,
	create_time      TIMESTAMPTZ NOT NULL,
	update_time      TIMESTAMPTZ NOT NULL,
	CONSTRAINT documents_data_is_object CHECK (jsonb_typeof(data) = 'object')
);
CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);
CREATE INDEX IF NOT EXISTS documents_collection_group_idx ON documents (collection_group);
CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING GIN (data jsonb_path_ops);
`

const (
	selectDocuments = `SELECT path, data, create_time, update_time FROM documents`

	insertDocument = `INSERT INTO documents (path, collection, collection_group, doc_id, data, create_time, update_time)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`

	upsertDocument = insertDocument + `
		ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, update_time = EXCLUDED.update_time`

	lockDocument   = `SELECT data FROM documents WHERE path = $1 FOR UPDATE`
	updateDocument = `UPDATE documents SET data = $2, update_time = $3 WHERE path = $1`
	deleteDocument = `DELETE FROM documents WHERE path = $1`
)

type documentRow struct {
	Path       string         `db:"path"`
	Data       types.JSONText `db:"data"`
	CreateTime time.Time      `db:"create_time"`
	UpdateTime time.Time      `db:"update_time"`
}

// PostgresStore keeps every document as one JSONB row keyed by its path.
type PostgresStore struct {
	db     *database.DB
	logger *logger.Logger
	now    func() time.Time
}

// NewPostgresStore creates a store on an open connection.
func NewPostgresStore(db *database.DB, log *logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the documents table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create documents schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, ref DocumentRef) (*Snapshot, error) {
	if err := validate(ref); err != nil {
		return nil, err
	}

	var row documentRow
	err := s.db.GetContext(ctx, &row, selectDocuments+` WHERE path = $1`, ref.Path())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref.Path())
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", ref.Path(), err)
	}
	return row.snapshot(ref)
}

func (s *PostgresStore) List(ctx context.Context, coll CollectionRef) ([]*Snapshot, error) {
	return s.Query(ctx, coll, Query{})
}

func (s *PostgresStore) Query(ctx context.Context, coll CollectionRef, q Query) ([]*Snapshot, error) {
	query, args, err := buildQuery(coll, q)
	if err != nil {
		return nil, err
	}

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query %s: %w", coll.Path(), err)
	}

	out := make([]*Snapshot, 0, len(rows))
	for _, row := range rows {
		ref, err := Doc(row.Path)
		if err != nil {
			return nil, err
		}
		snap, err := row.snapshot(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// buildQuery renders q as SQL. Field names travel as parameters, never as
// SQL text.
func buildQuery(coll CollectionRef, q Query) (string, []any, error) {
	var sb strings.Builder
	args := []any{coll.Path()}
	sb.WriteString(selectDocuments)
	sb.WriteString(` WHERE collection = $1`)

	for _, f := range q.Where {
		raw, err := encodeValue(f.Value)
		if err != nil {
			return "", nil, err
		}
		args = append(args, f.Field, types.JSONText(raw))
		fmt.Fprintf(&sb, ` AND data -> $%d::text = $%d::jsonb`, len(args)-1, len(args))
	}

	if q.OrderBy != "" {
		args = append(args, q.OrderBy)
		n := len(args)
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, ` AND data -> $%d::text IS NOT NULL ORDER BY data -> $%d::text %s, path`, n, n, dir)
	} else {
		sb.WriteString(` ORDER BY path`)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	return sb.String(), args, nil
}

func (s *PostgresStore) Add(ctx context.Context, coll CollectionRef, data map[string]any) (DocumentRef, error) {
	ref := coll.Doc(uuid.NewString())
	now := s.now()
	resolved, _ := resolve(data, now)
	raw, err := encodeDocument(resolved)
	if err != nil {
		return DocumentRef{}, err
	}

	_, err = s.db.ExecContext(ctx, insertDocument, ref.Path(), coll.Path(), coll.ID(), ref.ID(), raw, now)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return DocumentRef{}, appErr
		}
		return DocumentRef{}, fmt.Errorf("add to %s: %w", coll.Path(), err)
	}
	return ref, nil
}

func (s *PostgresStore) Set(ctx context.Context, ref DocumentRef, data map[string]any) error {
	if err := validate(ref); err != nil {
		return err
	}
	return s.set(ctx, s.db, ref, data, s.now())
}

func (s *PostgresStore) Update(ctx context.Context, ref DocumentRef, fields map[string]any) error {
	if err := validate(ref); err != nil {
		return err
	}
	now := s.now()
	return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		return s.update(ctx, tx, ref, fields, now)
	})
}

func (s *PostgresStore) Delete(ctx context.Context, ref DocumentRef) error {
	if err := validate(ref); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, deleteDocument, ref.Path()); err != nil {
		return fmt.Errorf("delete %s: %w", ref.Path(), err)
	}
	return nil
}

// Commit runs all writes in one transaction.
func (s *PostgresStore) Commit(ctx context.Context, writes []Write) error {
	for _, w := range writes {
		if err := validate(w.Ref); err != nil {
			return err
		}
	}

	now := s.now()
	return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, w := range writes {
			var err error
			switch w.Op {
			case OpSet:
				err = s.set(ctx, tx, w.Ref, w.Data, now)
			case OpUpdate:
				err = s.update(ctx, tx, w.Ref, w.Data, now)
			case OpDelete:
				_, err = tx.ExecContext(ctx, deleteDocument, w.Ref.Path())
			default:
				err = fmt.Errorf("unknown write op %q", w.Op)
			}
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("path", w.Ref.Path()).
					Str("op", string(w.Op)).
					Int("batch_size", len(writes)).
					Msg("batch write failed, rolling back")
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) set(ctx context.Context, ex sqlx.ExecerContext, ref DocumentRef, data map[string]any, now time.Time) error {
	resolved, _ := resolve(data, now)
	raw, err := encodeDocument(resolved)
	if err != nil {
		return err
	}
	coll := ref.Parent()
	if _, err := ex.ExecContext(ctx, upsertDocument, ref.Path(), coll.Path(), coll.ID(), ref.ID(), raw, now); err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return fmt.Errorf("set %s: %w", ref.Path(), err)
	}
	return nil
}

func (s *PostgresStore) update(ctx context.Context, tx *sqlx.Tx, ref DocumentRef, fields map[string]any, now time.Time) error {
	var current types.JSONText
	err := tx.GetContext(ctx, &current, lockDocument, ref.Path())
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, ref.Path())
	}
	if err != nil {
		return fmt.Errorf("lock %s: %w", ref.Path(), err)
	}

	merged, err := decode(current)
	if err != nil {
		return err
	}
	resolved, deleted := resolve(fields, now)
	for k, v := range resolved {
		merged[k] = v
	}
	for _, k := range deleted {
		delete(merged, k)
	}

	raw, err := encodeDocument(merged)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, updateDocument, ref.Path(), raw, now); err != nil {
		return fmt.Errorf("update %s: %w", ref.Path(), err)
	}
	return nil
}

func encodeDocument(data map[string]any) (types.JSONText, error) {
	norm, err := normalize(data)
	if err != nil {
		return nil, err
	}
	raw, err := encodeValue(norm)
	if err != nil {
		return nil, err
	}
	return types.JSONText(raw), nil
}

func (r documentRow) snapshot(ref DocumentRef) (*Snapshot, error) {
	data, err := decode(r.Data)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Ref:        ref,
		Data:       data,
		CreateTime: r.CreateTime,
		UpdateTime: r.UpdateTime,
	}, nil
}
