package consumers

import (
	"context"

	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/attendly/attendance-backend/pkg/messaging"
)

// Collection groups whose changes trigger notifications
const (
	GroupCheckRequests = "check_out_requests"
	GroupLineManagers  = "line_managers"
)

// QueueName is the queue the notification service consumes from
const QueueName = "notification-service.document-events"

// Triggers reacts to decoded document changes
type Triggers interface {
	OnCheckRequestCreated(ctx context.Context, req *repository.CheckRequest) error
	OnCheckRequestUpdated(ctx context.Context, before, after *repository.CheckRequest) error
	OnLineManagerCreated(ctx context.Context, lm *repository.LineManager) error
}

// DocumentEventConsumer consumes document change events
type DocumentEventConsumer struct {
	consumer *messaging.Consumer
	triggers Triggers
	logger   *logger.Logger
}

// NewDocumentEventConsumer creates a consumer bound to the document events
// exchange for the check request and line manager collection groups.
func NewDocumentEventConsumer(rmq *messaging.RabbitMQ, triggers Triggers, log *logger.Logger) (*DocumentEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, QueueName, log)
	if err != nil {
		return nil, err
	}

	for _, group := range []string{GroupCheckRequests, GroupLineManagers} {
		if err := consumer.Subscribe(messaging.ExchangeDocumentEvents, "document.*."+group); err != nil {
			return nil, err
		}
	}

	return Register(consumer, triggers, log), nil
}

// Register attaches the trigger handlers to consumer.
func Register(consumer *messaging.Consumer, triggers Triggers, log *logger.Logger) *DocumentEventConsumer {
	c := &DocumentEventConsumer{
		consumer: consumer,
		triggers: triggers,
		logger:   log,
	}

	consumer.RegisterHandler(messaging.DocumentEventType(messaging.EventDocumentCreated, GroupCheckRequests), c.handleCheckRequestCreated)
	consumer.RegisterHandler(messaging.DocumentEventType(messaging.EventDocumentUpdated, GroupCheckRequests), c.handleCheckRequestUpdated)
	consumer.RegisterHandler(messaging.DocumentEventType(messaging.EventDocumentCreated, GroupLineManagers), c.handleLineManagerCreated)

	return c
}

// Start starts consuming messages
func (c *DocumentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *DocumentEventConsumer) handleCheckRequestCreated(ctx context.Context, event *messaging.Event) error {
	var data messaging.DocumentChangedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}
	if data.After == nil {
		c.logger.Warn().Str("path", data.Path).Msg("created event without document data")
		return nil
	}

	c.logger.Info().Str("request_id", data.DocumentID).Msg("received check request created event")

	return c.triggers.OnCheckRequestCreated(ctx, repository.CheckRequestFromData(data.DocumentID, data.After))
}

func (c *DocumentEventConsumer) handleCheckRequestUpdated(ctx context.Context, event *messaging.Event) error {
	var data messaging.DocumentChangedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}
	if data.After == nil {
		c.logger.Warn().Str("path", data.Path).Msg("updated event without document data")
		return nil
	}

	c.logger.Info().Str("request_id", data.DocumentID).Msg("received check request updated event")

	var before *repository.CheckRequest
	if data.Before != nil {
		before = repository.CheckRequestFromData(data.DocumentID, data.Before)
	}
	return c.triggers.OnCheckRequestUpdated(ctx, before, repository.CheckRequestFromData(data.DocumentID, data.After))
}

func (c *DocumentEventConsumer) handleLineManagerCreated(ctx context.Context, event *messaging.Event) error {
	var data messaging.DocumentChangedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}
	if data.After == nil {
		c.logger.Warn().Str("path", data.Path).Msg("created event without document data")
		return nil
	}

	c.logger.Info().Str("doc_id", data.DocumentID).Msg("received line manager created event")

	return c.triggers.OnLineManagerCreated(ctx, repository.LineManagerFromData(data.DocumentID, data.After))
}
