package events

import (
	"context"

	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/attendly/attendance-backend/pkg/messaging"
)

// ImportCounts is what an import run reports when it finishes.
type ImportCounts struct {
	Mode       string
	Total      int
	Inserted   int
	Updated    int
	Duplicates int
	NotFound   int
	Errors     int
}

// AdminEventPublisher publishes admin-side events
type AdminEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewAdminEventPublisher creates a new admin event publisher. A nil
// publisher turns every method into a no-op.
func NewAdminEventPublisher(publisher messaging.EventPublisher, log *logger.Logger) *AdminEventPublisher {
	return &AdminEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

// PublishImportCompleted publishes an import completed event
func (p *AdminEventPublisher) PublishImportCompleted(ctx context.Context, counts ImportCounts) {
	if p == nil || p.publisher == nil {
		return
	}

	data := messaging.ImportCompletedEvent{
		Mode:       counts.Mode,
		Total:      counts.Total,
		Inserted:   counts.Inserted,
		Updated:    counts.Updated,
		Duplicates: counts.Duplicates,
		NotFound:   counts.NotFound,
		Errors:     counts.Errors,
	}

	if err := p.publisher.Publish(ctx, messaging.EventImportCompleted, data); err != nil {
		p.logger.Error().Err(err).Str("mode", counts.Mode).Msg("failed to publish import completed event")
	}
}
