package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/attendly/attendance-backend/pkg/messaging"
	"github.com/attendly/attendance-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservedStore_EmitsLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	pub := testutil.NewMockPublisher()
	store := NewObservedStore(NewMemoryStore(), pub, logger.Nop(), "check_out_requests")

	ref, err := store.Add(ctx, Collection("check_out_requests"), map[string]any{"status": "pending"})
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, ref, map[string]any{"status": "approved"}))
	require.NoError(t, store.Delete(ctx, ref))

	events := pub.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "document.created.check_out_requests", events[0].Type)
	assert.Equal(t, "document.updated.check_out_requests", events[1].Type)
	assert.Equal(t, "document.deleted.check_out_requests", events[2].Type)

	updated := events[1].Payload.(messaging.DocumentChangedEvent)
	assert.Equal(t, ref.ID(), updated.DocumentID)
	assert.Equal(t, "pending", updated.Before["status"])
	assert.Equal(t, "approved", updated.After["status"])

	created := events[0].Payload.(messaging.DocumentChangedEvent)
	assert.Nil(t, created.Before)
	deleted := events[2].Payload.(messaging.DocumentChangedEvent)
	assert.Nil(t, deleted.After)
}

func TestObservedStore_IgnoresUnwatchedGroups(t *testing.T) {
	ctx := context.Background()
	pub := testutil.NewMockPublisher()
	store := NewObservedStore(NewMemoryStore(), pub, logger.Nop(), "line_managers")

	require.NoError(t, store.Set(ctx, Collection("employees").Doc("E1"), map[string]any{"pin": "1111"}))
	pub.AssertNoEventsPublished(t)
}

func TestObservedStore_FailedWriteEmitsNothing(t *testing.T) {
	ctx := context.Background()
	pub := testutil.NewMockPublisher()
	store := NewObservedStore(NewMemoryStore(), pub, logger.Nop())

	err := store.Update(ctx, Collection("check_out_requests").Doc("nope"), map[string]any{"status": "approved"})
	assert.ErrorIs(t, err, ErrNotFound)
	pub.AssertNoEventsPublished(t)
}

func TestObservedStore_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	pub := testutil.NewMockPublisher()
	pub.Err = errors.New("broker unavailable")
	inner := NewMemoryStore()
	store := NewObservedStore(inner, pub, logger.Nop())

	ref := Collection("line_managers").Doc("LM1")
	require.NoError(t, store.Set(ctx, ref, map[string]any{"managerId": "EMP0001"}))

	_, err := inner.Get(ctx, ref)
	assert.NoError(t, err)
	pub.AssertEventPublished(t, "document.created.line_managers")
}

func TestObservedStore_CommitEmitsPerDocument(t *testing.T) {
	ctx := context.Background()
	pub := testutil.NewMockPublisher()
	inner := NewMemoryStore()
	coll := Collection("check_out_requests")
	require.NoError(t, inner.Set(ctx, coll.Doc("a"), map[string]any{"status": "pending"}))
	store := NewObservedStore(inner, pub, logger.Nop())

	require.NoError(t, store.Commit(ctx, []Write{
		UpdateWrite(coll.Doc("a"), map[string]any{"status": "rejected"}),
		SetWrite(coll.Doc("b"), map[string]any{"status": "pending"}),
	}))

	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "document.updated.check_out_requests", events[0].Type)
	assert.Equal(t, "document.created.check_out_requests", events[1].Type)
}
