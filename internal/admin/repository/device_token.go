package repository

import (
	"context"
	"time"

	"github.com/attendly/attendance-backend/pkg/docstore"
)

// DeviceToken is the push token last registered by a user's device
type DeviceToken struct {
	UserID    string     `json:"userId"`
	Token     string     `json:"token"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// DeviceTokenRepository handles push token documents keyed by user id
type DeviceTokenRepository struct {
	store docstore.Store
}

// NewDeviceTokenRepository creates a new device token repository
func NewDeviceTokenRepository(store docstore.Store) *DeviceTokenRepository {
	return &DeviceTokenRepository{store: store}
}

// Get returns the token stored for userID. A document with an empty token
// is returned as is; callers decide how to treat it.
func (r *DeviceTokenRepository) Get(ctx context.Context, userID string) (*DeviceToken, error) {
	snap, err := r.store.Get(ctx, deviceTokensColl.Doc(userID))
	if err != nil {
		return nil, storeError(err, "device token")
	}

	f := fields(snap.Data)
	return &DeviceToken{
		UserID:    userID,
		Token:     f.str("token"),
		UpdatedAt: f.time("updatedAt"),
	}, nil
}

// Store replaces the token for userID
func (r *DeviceTokenRepository) Store(ctx context.Context, userID, token string) error {
	return r.store.Set(ctx, deviceTokensColl.Doc(userID), map[string]any{
		"token":     token,
		"updatedAt": docstore.ServerTimestamp,
	})
}
