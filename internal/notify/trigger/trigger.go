// Package trigger turns check request and line manager changes into push
// notifications. Every trigger logs its failures and returns nil so a broken
// token or gateway never blocks the write that caused it.
package trigger

import (
	"context"
	"fmt"

	"github.com/attendly/attendance-backend/internal/admin/domain"
	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/internal/notify/dispatch"
	"github.com/attendly/attendance-backend/pkg/errors"
	"github.com/attendly/attendance-backend/pkg/logger"
)

// Data payload types
const (
	TypeRequestUpdate = "check_out_request_update"
	TypeNewRequest    = "new_check_out_request"
)

// Defaults for the platform hints
const (
	DefaultChannelID   = "check_requests_channel"
	DefaultClickAction = "FLUTTER_NOTIFICATION_CLICK"
)

// TokenSource looks up the device token stored for a user
type TokenSource interface {
	Get(ctx context.Context, userID string) (*repository.DeviceToken, error)
}

// Options tunes the notifications the triggers build
type Options struct {
	ChannelID   string
	ClickAction string
}

// Triggers reacts to document changes
type Triggers struct {
	tokens     TokenSource
	dispatcher dispatch.Dispatcher
	opts       Options
	logger     *logger.Logger
}

// New creates the notification triggers
func New(tokens TokenSource, dispatcher dispatch.Dispatcher, opts Options, log *logger.Logger) *Triggers {
	if opts.ChannelID == "" {
		opts.ChannelID = DefaultChannelID
	}
	if opts.ClickAction == "" {
		opts.ClickAction = DefaultClickAction
	}
	return &Triggers{
		tokens:     tokens,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     log.WithComponent("triggers"),
	}
}

// OnCheckRequestUpdated tells the employee that their request was approved
// or rejected. Updates that leave the status alone send nothing.
func (t *Triggers) OnCheckRequestUpdated(ctx context.Context, before, after *repository.CheckRequest) error {
	log := t.logger.With().Str("request_id", after.ID).Str("employee_id", after.EmployeeID).Logger()

	if before != nil && before.Status == after.Status {
		log.Debug().Msg("status did not change, skipping notification")
		return nil
	}

	var outcome string
	switch after.Status {
	case domain.StatusApproved:
		outcome = "Approved"
	case domain.StatusRejected:
		outcome = "Rejected"
	default:
		log.Info().Str("status", after.Status).Msg("unknown status, skipping notification")
		return nil
	}

	token := t.token(ctx, after.EmployeeID)
	if token == "" {
		return nil
	}

	requestType := domain.RequestTypeOrDefault(after.RequestType)
	msg := t.message(token,
		fmt.Sprintf("%s Request %s", domain.DisplayRequestType(requestType), outcome),
		fmt.Sprintf("Your request to %s has been %s.", domain.RequestVerb(requestType), after.Status),
		map[string]string{
			"type":        TypeRequestUpdate,
			"requestId":   after.ID,
			"status":      after.Status,
			"employeeId":  after.EmployeeID,
			"requestType": requestType,
			"message":     after.ResponseMessage,
		})

	if err := t.dispatcher.Send(ctx, msg); err != nil {
		log.Error().Err(err).Msg("failed to send request update notification")
		return nil
	}

	log.Info().Str("status", after.Status).Msg("request update notification sent")
	return nil
}

// OnCheckRequestCreated tells the line manager about a new request. The
// manager's token may be stored with or without the EMP prefix; the first
// candidate id holding a token wins.
func (t *Triggers) OnCheckRequestCreated(ctx context.Context, req *repository.CheckRequest) error {
	candidates := domain.ManagerIDCandidates(req.LineManagerID)

	var token, managerID string
	for _, id := range candidates {
		if token = t.token(ctx, id); token != "" {
			managerID = id
			break
		}
	}
	if token == "" {
		t.logger.Info().Strs("manager_ids", candidates).Msg("no push token found for any manager id")
		return nil
	}

	requestType := domain.RequestTypeOrDefault(req.RequestType)
	msg := t.message(token,
		fmt.Sprintf("New %s Request", domain.DisplayRequestType(requestType)),
		fmt.Sprintf("%s has requested to %s from an offsite location.", req.EmployeeName, domain.RequestVerb(requestType)),
		map[string]string{
			"type":         TypeNewRequest,
			"requestId":    req.ID,
			"employeeId":   req.EmployeeID,
			"employeeName": req.EmployeeName,
			"locationName": req.LocationName,
			"requestType":  requestType,
		})

	if err := t.dispatcher.Send(ctx, msg); err != nil {
		t.logger.Error().Err(err).Str("manager_id", managerID).Msg("failed to send new request notification")
		return nil
	}

	t.logger.Info().Str("manager_id", managerID).Str("request_id", req.ID).Msg("new request notification sent")
	return nil
}

// OnLineManagerCreated subscribes the new manager's device to the
// manager_{managerId} topic.
func (t *Triggers) OnLineManagerCreated(ctx context.Context, lm *repository.LineManager) error {
	if lm.ManagerID == "" {
		t.logger.Info().Str("doc_id", lm.ID).Msg("line manager has no managerId, skipping subscription")
		return nil
	}

	token := t.token(ctx, lm.ManagerID)
	if token == "" {
		return nil
	}

	topic := "manager_" + lm.ManagerID
	if err := t.dispatcher.SubscribeToTopic(ctx, token, topic); err != nil {
		t.logger.Error().Err(err).Str("topic", topic).Msg("failed to subscribe to topic")
		return nil
	}

	t.logger.Info().Str("topic", topic).Msg("subscribed manager to topic")
	return nil
}

func (t *Triggers) token(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}

	tok, err := t.tokens.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			t.logger.Info().Str("user_id", userID).Msg("no push token found")
		} else {
			t.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to read push token")
		}
		return ""
	}
	if tok.Token == "" {
		t.logger.Info().Str("user_id", userID).Msg("push token is empty")
	}
	return tok.Token
}

func (t *Triggers) message(token, title, body string, data map[string]string) *dispatch.Message {
	data["click_action"] = t.opts.ClickAction
	return &dispatch.Message{
		Token: token,
		Title: title,
		Body:  body,
		Data:  data,
		Android: &dispatch.Android{
			Priority:    "high",
			Sound:       "default",
			ChannelID:   t.opts.ChannelID,
			ClickAction: t.opts.ClickAction,
		},
		APNS: &dispatch.APNS{
			Sound:             "default",
			Badge:             1,
			ContentAvailable:  true,
			InterruptionLevel: "time-sensitive",
		},
	}
}
