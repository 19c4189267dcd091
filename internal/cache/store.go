// Package cache provides the key-value storage contract the reconciler
// and identity resolver use opportunistically to avoid round-trips. The
// cache is advisory: every consumer has a repository fallback, so a lost
// or stale entry costs one extra fetch, never correctness.
package cache

import (
	"context"
	"time"
)

// Store is the get/set/remove contract. Implementations must treat an
// absent key as a miss, not an error.
type Store interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Freshness windows. Appointment lists stay usable for five minutes;
// per-date slot snapshots go stale faster because a competing booking
// invalidates them.
const (
	AppointmentListTTL = 5 * time.Minute
	SlotSnapshotTTL    = 2 * time.Minute
	IdentityTTL        = 30 * time.Minute
)

// SlotSnapshotKey is the cache key for one shop/date availability snapshot.
func SlotSnapshotKey(shopID, date string) string {
	return "slots:" + shopID + ":" + date
}
