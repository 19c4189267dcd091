package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/barberhq/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository handles appointment persistence. Shop and
	// client ids are passed as normalized Ref keys (raw id strings).
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context) ([]*model.Appointment, error)
		ListByShop(ctx context.Context, shopID string) ([]*model.Appointment, error)
		ListByClient(ctx context.Context, clientID string) ([]*model.Appointment, error)
		ListByShopAndDate(ctx context.Context, shopID string, date time.Time) ([]*model.Appointment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
		Delete(ctx context.Context, id uuid.UUID) error
		FindActiveBySlot(ctx context.Context, shopID string, date time.Time, timeSlot string) (*model.Appointment, error)
		MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	ShopRepository interface {
		Create(ctx context.Context, shop *model.Shop) error
		Get(ctx context.Context, id uuid.UUID) (*model.Shop, error)
		GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.Shop, error)
		Update(ctx context.Context, shop *model.Shop) error
		List(ctx context.Context) ([]*model.Shop, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error
	}
)
