package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/attendly/attendance-backend/internal/notify/dispatch"
	apperrors "github.com/attendly/attendance-backend/pkg/errors"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/attendly/attendance-backend/pkg/messaging"
	"github.com/attendly/attendance-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushGateway_Send(t *testing.T) {
	pub := testutil.NewMockPublisher()
	gw := dispatch.NewPushGateway(pub, logger.Nop())

	err := gw.Send(context.Background(), &dispatch.Message{
		Token:   "tok",
		Title:   "Hello",
		Body:    "World",
		Data:    map[string]string{"type": "x"},
		Android: &dispatch.Android{Priority: "high", Sound: "default", ChannelID: "chan"},
		APNS:    &dispatch.APNS{Sound: "default", Badge: 1, ContentAvailable: true, InterruptionLevel: "time-sensitive"},
	})
	require.NoError(t, err)

	published := pub.Events()
	require.Len(t, published, 1)
	assert.Equal(t, messaging.EventPushSend, published[0].Type)

	cmd := published[0].Payload.(messaging.PushSendCommand)
	assert.Equal(t, "tok", cmd.Token)
	assert.Equal(t, "x", cmd.Data["type"])
	assert.Equal(t, "chan", cmd.Android.ChannelID)
	assert.Equal(t, 1, cmd.APNS.Badge)
	assert.True(t, cmd.APNS.ContentAvailable)
}

func TestPushGateway_SendWithoutHints(t *testing.T) {
	pub := testutil.NewMockPublisher()
	gw := dispatch.NewPushGateway(pub, logger.Nop())

	require.NoError(t, gw.Send(context.Background(), &dispatch.Message{Token: "tok", Title: "t"}))

	cmd := pub.Events()[0].Payload.(messaging.PushSendCommand)
	assert.Nil(t, cmd.Android)
	assert.Nil(t, cmd.APNS)
}

func TestPushGateway_RequiresToken(t *testing.T) {
	pub := testutil.NewMockPublisher()
	gw := dispatch.NewPushGateway(pub, logger.Nop())

	err := gw.Send(context.Background(), &dispatch.Message{Title: "t"})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	err = gw.SubscribeToTopic(context.Background(), "", "manager_EMP0001")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	pub.AssertNoEventsPublished(t)
}

func TestPushGateway_SubscribeToTopic(t *testing.T) {
	pub := testutil.NewMockPublisher()
	gw := dispatch.NewPushGateway(pub, logger.Nop())

	require.NoError(t, gw.SubscribeToTopic(context.Background(), "tok", "manager_EMP0001"))

	published := pub.Events()
	require.Len(t, published, 1)
	assert.Equal(t, messaging.EventPushSubscribe, published[0].Type)
	assert.Equal(t, messaging.PushSubscribeCommand{Token: "tok", Topic: "manager_EMP0001"}, published[0].Payload)
}

func TestPushGateway_PublishError(t *testing.T) {
	pub := testutil.NewMockPublisher()
	pub.Err = errors.New("channel closed")
	gw := dispatch.NewPushGateway(pub, logger.Nop())

	err := gw.Send(context.Background(), &dispatch.Message{Token: "tok"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pub.Err)
}
