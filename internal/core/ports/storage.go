package ports

import (
	"context"
	"errors"
	"time"

	"github.com/uwillc/netposture/internal/core/domain"
)

// ErrProfileNotFound is returned when a named profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository persists named device profiles.
type ProfileRepository interface {
	List(ctx context.Context) ([]domain.DeviceProfile, error)
	Get(ctx context.Context, name string) (*domain.DeviceProfile, error)
	Save(ctx context.Context, profile domain.DeviceProfile) error
	Delete(ctx context.Context, name string) error
	Close() error
}

// Clock abstracts time.Now so scoring and cache freshness are testable
// with deterministic timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return ClockFunc(time.Now) }
