package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/attendly/attendance-backend/internal/admin/events"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/attendly/attendance-backend/pkg/messaging"
	"github.com/attendly/attendance-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishImportCompleted(t *testing.T) {
	pub := testutil.NewMockPublisher()
	p := events.NewAdminEventPublisher(pub, logger.Nop())

	p.PublishImportCompleted(context.Background(), events.ImportCounts{
		Mode:       "mastersheet",
		Total:      3,
		Inserted:   1,
		Duplicates: 1,
		Errors:     1,
	})

	published := pub.Events()
	require.Len(t, published, 1)
	assert.Equal(t, messaging.EventImportCompleted, published[0].Type)

	data := published[0].Payload.(messaging.ImportCompletedEvent)
	assert.Equal(t, "mastersheet", data.Mode)
	assert.Equal(t, 3, data.Total)
	assert.Equal(t, 1, data.Errors)
}

func TestPublishImportCompleted_SwallowsPublishErrors(t *testing.T) {
	pub := testutil.NewMockPublisher()
	pub.Err = errors.New("channel closed")
	p := events.NewAdminEventPublisher(pub, logger.Nop())

	assert.NotPanics(t, func() {
		p.PublishImportCompleted(context.Background(), events.ImportCounts{Mode: "employees"})
	})
	pub.AssertEventPublished(t, messaging.EventImportCompleted)
}

func TestPublishImportCompleted_NilPublisher(t *testing.T) {
	var nilPublisher *events.AdminEventPublisher
	assert.NotPanics(t, func() {
		nilPublisher.PublishImportCompleted(context.Background(), events.ImportCounts{})
		events.NewAdminEventPublisher(nil, logger.Nop()).PublishImportCompleted(context.Background(), events.ImportCounts{})
	})
}
