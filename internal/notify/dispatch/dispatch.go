// Package dispatch hands push notifications to the delivery gateway.
package dispatch

import (
	"context"
	"fmt"

	"github.com/attendly/attendance-backend/pkg/errors"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/attendly/attendance-backend/pkg/messaging"
)

// Dispatcher sends notifications to device tokens and manages topic
// subscriptions.
type Dispatcher interface {
	Send(ctx context.Context, msg *Message) error
	SubscribeToTopic(ctx context.Context, token, topic string) error
}

// Message is one notification addressed to a single device token.
type Message struct {
	Token   string
	Title   string
	Body    string
	Data    map[string]string
	Android *Android
	APNS    *APNS
}

// Android carries delivery hints for Android devices
type Android struct {
	Priority    string
	Sound       string
	ChannelID   string
	ClickAction string
}

// APNS carries delivery hints for Apple devices
type APNS struct {
	Sound             string
	Badge             int
	ContentAvailable  bool
	InterruptionLevel string
}

// PushGateway publishes push commands to the outbound exchange where the
// delivery gateway picks them up.
type PushGateway struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewPushGateway creates a new push gateway dispatcher
func NewPushGateway(publisher messaging.EventPublisher, log *logger.Logger) *PushGateway {
	return &PushGateway{
		publisher: publisher,
		logger:    log.WithComponent("push_gateway"),
	}
}

// Send publishes a push.send command
func (g *PushGateway) Send(ctx context.Context, msg *Message) error {
	if msg == nil || msg.Token == "" {
		return errors.BadRequest("push token is required")
	}

	cmd := messaging.PushSendCommand{
		Token: msg.Token,
		Title: msg.Title,
		Body:  msg.Body,
		Data:  msg.Data,
	}
	if a := msg.Android; a != nil {
		cmd.Android = &messaging.AndroidHints{
			Priority:    a.Priority,
			Sound:       a.Sound,
			ChannelID:   a.ChannelID,
			ClickAction: a.ClickAction,
		}
	}
	if a := msg.APNS; a != nil {
		cmd.APNS = &messaging.APNSHints{
			Sound:             a.Sound,
			Badge:             a.Badge,
			ContentAvailable:  a.ContentAvailable,
			InterruptionLevel: a.InterruptionLevel,
		}
	}

	if err := g.publisher.Publish(ctx, messaging.EventPushSend, cmd); err != nil {
		return fmt.Errorf("publish push command: %w", err)
	}

	g.logger.Debug().Str("title", msg.Title).Msg("push command published")
	return nil
}

// SubscribeToTopic publishes a push.subscribe command
func (g *PushGateway) SubscribeToTopic(ctx context.Context, token, topic string) error {
	if token == "" || topic == "" {
		return errors.BadRequest("token and topic are required")
	}

	cmd := messaging.PushSubscribeCommand{Token: token, Topic: topic}
	if err := g.publisher.Publish(ctx, messaging.EventPushSubscribe, cmd); err != nil {
		return fmt.Errorf("publish subscribe command: %w", err)
	}

	g.logger.Debug().Str("topic", topic).Msg("subscribe command published")
	return nil
}
