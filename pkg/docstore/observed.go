package docstore

import (
	"context"
	"errors"

	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/attendly/attendance-backend/pkg/messaging"
)

// ObservedStore decorates a Store and publishes a DocumentChangedEvent after
// each successful write to a watched collection group. Publish failures are
// logged and never fail the write.
type ObservedStore struct {
	Store
	publisher messaging.EventPublisher
	logger    *logger.Logger
	watched   map[string]bool
}

// NewObservedStore watches the given collection groups, or all of them when
// none are named.
func NewObservedStore(inner Store, publisher messaging.EventPublisher, log *logger.Logger, groups ...string) *ObservedStore {
	watched := make(map[string]bool, len(groups))
	for _, g := range groups {
		watched[g] = true
	}
	return &ObservedStore{
		Store:     inner,
		publisher: publisher,
		logger:    log.WithComponent("docstore.observer"),
		watched:   watched,
	}
}

func (o *ObservedStore) watches(ref DocumentRef) bool {
	return len(o.watched) == 0 || o.watched[ref.Parent().ID()]
}

func (o *ObservedStore) Add(ctx context.Context, coll CollectionRef, data map[string]any) (DocumentRef, error) {
	ref, err := o.Store.Add(ctx, coll, data)
	if err != nil {
		return ref, err
	}
	if o.watches(ref) {
		o.emit(ctx, ref, nil)
	}
	return ref, nil
}

func (o *ObservedStore) Set(ctx context.Context, ref DocumentRef, data map[string]any) error {
	return o.observe(ctx, []DocumentRef{ref}, func() error { return o.Store.Set(ctx, ref, data) })
}

func (o *ObservedStore) Update(ctx context.Context, ref DocumentRef, fields map[string]any) error {
	return o.observe(ctx, []DocumentRef{ref}, func() error { return o.Store.Update(ctx, ref, fields) })
}

func (o *ObservedStore) Delete(ctx context.Context, ref DocumentRef) error {
	return o.observe(ctx, []DocumentRef{ref}, func() error { return o.Store.Delete(ctx, ref) })
}

func (o *ObservedStore) Commit(ctx context.Context, writes []Write) error {
	refs := make([]DocumentRef, 0, len(writes))
	for _, w := range writes {
		refs = append(refs, w.Ref)
	}
	return o.observe(ctx, refs, func() error { return o.Store.Commit(ctx, writes) })
}

// observe captures the watched documents before write runs and emits one
// event per document once it has succeeded.
func (o *ObservedStore) observe(ctx context.Context, refs []DocumentRef, write func() error) error {
	before := map[string]map[string]any{}
	var targets []DocumentRef
	seen := map[string]bool{}
	for _, ref := range refs {
		if !o.watches(ref) || seen[ref.Path()] {
			continue
		}
		seen[ref.Path()] = true
		targets = append(targets, ref)
		if snap, err := o.Store.Get(ctx, ref); err == nil {
			before[ref.Path()] = snap.Data
		} else if !errors.Is(err, ErrNotFound) {
			o.logger.Warn().Err(err).Str("path", ref.Path()).Msg("failed to read document before write")
		}
	}

	if err := write(); err != nil {
		return err
	}

	for _, ref := range targets {
		o.emit(ctx, ref, before[ref.Path()])
	}
	return nil
}

func (o *ObservedStore) emit(ctx context.Context, ref DocumentRef, before map[string]any) {
	var after map[string]any
	if snap, err := o.Store.Get(ctx, ref); err == nil {
		after = snap.Data
	} else if !errors.Is(err, ErrNotFound) {
		o.logger.Warn().Err(err).Str("path", ref.Path()).Msg("failed to read document after write")
		return
	}

	var op string
	switch {
	case before == nil && after == nil:
		return
	case before == nil:
		op = messaging.EventDocumentCreated
	case after == nil:
		op = messaging.EventDocumentDeleted
	default:
		op = messaging.EventDocumentUpdated
	}

	coll := ref.Parent()
	event := messaging.DocumentChangedEvent{
		Path:            ref.Path(),
		Collection:      coll.Path(),
		CollectionGroup: coll.ID(),
		DocumentID:      ref.ID(),
		Operation:       op,
		Before:          before,
		After:           after,
	}

	eventType := messaging.DocumentEventType(op, coll.ID())
	if err := o.publisher.Publish(ctx, eventType, event); err != nil {
		o.logger.Error().
			Err(err).
			Str("event_type", eventType).
			Str("path", ref.Path()).
			Msg("failed to publish document event")
	}
}
