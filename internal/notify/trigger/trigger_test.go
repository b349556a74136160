package trigger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/internal/notify/dispatch"
	"github.com/attendly/attendance-backend/internal/notify/trigger"
	"github.com/attendly/attendance-backend/pkg/docstore"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	sent       []*dispatch.Message
	subscribed map[string]string
	err        error
}

func (f *fakeDispatcher) Send(ctx context.Context, msg *dispatch.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeDispatcher) SubscribeToTopic(ctx context.Context, token, topic string) error {
	if f.subscribed == nil {
		f.subscribed = make(map[string]string)
	}
	f.subscribed[topic] = token
	return f.err
}

func setup(t *testing.T, tokens map[string]string) (*trigger.Triggers, *fakeDispatcher) {
	t.Helper()
	store := docstore.NewMemoryStore()
	repo := repository.NewDeviceTokenRepository(store)
	for user, tok := range tokens {
		require.NoError(t, repo.Store(context.Background(), user, tok))
	}
	d := &fakeDispatcher{}
	return trigger.New(repo, d, trigger.Options{}, logger.Nop()), d
}

// ============================================================================
// Request updates
// ============================================================================

func TestOnCheckRequestUpdated(t *testing.T) {
	tests := []struct {
		name        string
		requestType string
		status      string
		wantType    string
		wantTitle   string
		wantBody    string
	}{
		{"approved check-out", "check-out", "approved", "check-out", "Check-Out Request Approved", "Your request to check out has been approved."},
		{"rejected check-in", "check-in", "rejected", "check-in", "Check-In Request Rejected", "Your request to check in has been rejected."},
		{"missing type reads as check-out", "", "approved", "check-out", "Check-Out Request Approved", "Your request to check out has been approved."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, d := setup(t, map[string]string{"E1": "tok-e1"})
			before := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "pending"}
			after := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: tt.status, RequestType: tt.requestType, ResponseMessage: "see you"}

			require.NoError(t, tr.OnCheckRequestUpdated(context.Background(), before, after))
			require.Len(t, d.sent, 1)

			msg := d.sent[0]
			assert.Equal(t, "tok-e1", msg.Token)
			assert.Equal(t, tt.wantTitle, msg.Title)
			assert.Equal(t, tt.wantBody, msg.Body)
			assert.Equal(t, map[string]string{
				"type":         trigger.TypeRequestUpdate,
				"requestId":    "R1",
				"status":       tt.status,
				"employeeId":   "E1",
				"requestType":  tt.wantType,
				"message":      "see you",
				"click_action": trigger.DefaultClickAction,
			}, msg.Data)
			assert.Equal(t, &dispatch.Android{Priority: "high", Sound: "default", ChannelID: trigger.DefaultChannelID, ClickAction: trigger.DefaultClickAction}, msg.Android)
			assert.Equal(t, &dispatch.APNS{Sound: "default", Badge: 1, ContentAvailable: true, InterruptionLevel: "time-sensitive"}, msg.APNS)
		})
	}
}

func TestOnCheckRequestUpdated_Skips(t *testing.T) {
	ctx := context.Background()

	t.Run("status unchanged", func(t *testing.T) {
		tr, d := setup(t, map[string]string{"E1": "tok"})
		req := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "approved"}
		require.NoError(t, tr.OnCheckRequestUpdated(ctx, req, req))
		assert.Empty(t, d.sent)
	})

	t.Run("unknown status", func(t *testing.T) {
		tr, d := setup(t, map[string]string{"E1": "tok"})
		before := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "pending"}
		after := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "escalated"}
		require.NoError(t, tr.OnCheckRequestUpdated(ctx, before, after))
		assert.Empty(t, d.sent)
	})

	t.Run("no token", func(t *testing.T) {
		tr, d := setup(t, nil)
		before := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "pending"}
		after := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "approved"}
		require.NoError(t, tr.OnCheckRequestUpdated(ctx, before, after))
		assert.Empty(t, d.sent)
	})

	t.Run("empty token", func(t *testing.T) {
		tr, d := setup(t, map[string]string{"E1": ""})
		before := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "pending"}
		after := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "approved"}
		require.NoError(t, tr.OnCheckRequestUpdated(ctx, before, after))
		assert.Empty(t, d.sent)
	})
}

func TestOnCheckRequestUpdated_SwallowsDispatchErrors(t *testing.T) {
	tr, d := setup(t, map[string]string{"E1": "tok"})
	d.err = errors.New("gateway down")

	before := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "pending"}
	after := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "approved"}
	assert.NoError(t, tr.OnCheckRequestUpdated(context.Background(), before, after))
	assert.Len(t, d.sent, 1)
}

// ============================================================================
// New requests
// ============================================================================

func TestOnCheckRequestCreated_ManagerIDFallback(t *testing.T) {
	tests := []struct {
		name      string
		managerID string
		tokens    map[string]string
		wantToken string
	}{
		{"exact id", "EMP0001", map[string]string{"EMP0001": "tok-exact", "0001": "tok-bare"}, "tok-exact"},
		{"prefix removed", "EMP0001", map[string]string{"0001": "tok-bare"}, "tok-bare"},
		{"prefix added", "0001", map[string]string{"EMP0001": "tok-prefixed"}, "tok-prefixed"},
		{"empty first candidate is skipped", "EMP0001", map[string]string{"EMP0001": "", "0001": "tok-bare"}, "tok-bare"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, d := setup(t, tt.tokens)
			req := &repository.CheckRequest{
				ID:            "R9",
				EmployeeID:    "E1",
				EmployeeName:  "Ali",
				LineManagerID: tt.managerID,
				LocationName:  "Site B",
				RequestType:   "check-out",
			}

			require.NoError(t, tr.OnCheckRequestCreated(context.Background(), req))
			require.Len(t, d.sent, 1)
			assert.Equal(t, tt.wantToken, d.sent[0].Token)
			assert.Equal(t, "New Check-Out Request", d.sent[0].Title)
			assert.Equal(t, "Ali has requested to check out from an offsite location.", d.sent[0].Body)
			assert.Equal(t, trigger.TypeNewRequest, d.sent[0].Data["type"])
			assert.Equal(t, "Site B", d.sent[0].Data["locationName"])
		})
	}
}

func TestOnCheckRequestCreated_NoManagerToken(t *testing.T) {
	tr, d := setup(t, map[string]string{"EMP0002": "other"})
	req := &repository.CheckRequest{ID: "R9", EmployeeName: "Ali", LineManagerID: "EMP0001", RequestType: "check-in"}

	require.NoError(t, tr.OnCheckRequestCreated(context.Background(), req))
	assert.Empty(t, d.sent)
}

// ============================================================================
// Line managers
// ============================================================================

func TestOnLineManagerCreated(t *testing.T) {
	ctx := context.Background()

	tr, d := setup(t, map[string]string{"EMP0001": "tok-m"})
	require.NoError(t, tr.OnLineManagerCreated(ctx, &repository.LineManager{ID: "LM1", ManagerID: "EMP0001"}))
	assert.Equal(t, map[string]string{"manager_EMP0001": "tok-m"}, d.subscribed)

	tr, d = setup(t, nil)
	require.NoError(t, tr.OnLineManagerCreated(ctx, &repository.LineManager{ID: "LM1", ManagerID: "EMP0001"}))
	require.NoError(t, tr.OnLineManagerCreated(ctx, &repository.LineManager{ID: "LM2"}))
	assert.Empty(t, d.subscribed)
}

func TestOptionsOverrideDefaults(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := repository.NewDeviceTokenRepository(store)
	require.NoError(t, repo.Store(context.Background(), "E1", "tok"))
	d := &fakeDispatcher{}
	tr := trigger.New(repo, d, trigger.Options{ChannelID: "ops", ClickAction: "OPEN"}, logger.Nop())

	before := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "pending"}
	after := &repository.CheckRequest{ID: "R1", EmployeeID: "E1", Status: "approved"}
	require.NoError(t, tr.OnCheckRequestUpdated(context.Background(), before, after))

	require.Len(t, d.sent, 1)
	assert.Equal(t, "ops", d.sent[0].Android.ChannelID)
	assert.Equal(t, "OPEN", d.sent[0].Data["click_action"])
}
