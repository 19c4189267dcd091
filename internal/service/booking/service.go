// Package booking is the single authority that decides whether a booking
// request may proceed and commits it against the current slot state.
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/barberhq/booking-api/internal/cache"
	"github.com/barberhq/booking-api/internal/email"
	"github.com/barberhq/booking-api/internal/model"
	"github.com/barberhq/booking-api/internal/repository"
	"github.com/barberhq/booking-api/internal/slot"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
	"github.com/barberhq/booking-api/pkg/logger"
)

type Service struct {
	repo     repository.AppointmentRepository
	shopRepo repository.ShopRepository
	userRepo repository.UserRepository
	outbox   repository.OutboxRepository
	store    cache.Store
	emailSvc email.Service
	catalog  slot.Catalog
	logger   *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	shopRepo repository.ShopRepository,
	userRepo repository.UserRepository,
	outbox repository.OutboxRepository,
	store cache.Store,
	emailSvc email.Service,
	catalog slot.Catalog,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &Service{
		repo:     repo,
		shopRepo: shopRepo,
		userRepo: userRepo,
		outbox:   outbox,
		store:    store,
		emailSvc: emailSvc,
		catalog:  catalog,
		logger:   log,
	}
}

// TryBook validates and commits a booking for (shop, date, timeSlot).
// The repository re-check immediately before commit is a fast-path UX
// rejection; the storage layer's partial unique index is the real
// arbiter between concurrent attempts, so a lost race still surfaces as
// a slot-taken conflict rather than a double booking.
func (s *Service) TryBook(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}

	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return nil, apperrors.NewValidation(fmt.Sprintf("invalid date %q, expected %s", req.Date, model.DateLayout))
	}

	// Labels outside the catalog are still bookable: shops hand out ad
	// hoc slots and the catalog is display-side only.
	existing, err := s.repo.FindActiveBySlot(ctx, req.ShopID.Key(), date, req.TimeSlot)
	if err != nil {
		return nil, apperrors.NewTransient("could not verify slot availability", err)
	}
	if existing != nil {
		return nil, apperrors.NewSlotTaken(req.Date, req.TimeSlot)
	}

	apt := &model.Appointment{
		ID:       uuid.New(),
		ClientID: model.NewRef(req.ClientID.Key()),
		ShopID:   model.NewRef(req.ShopID.Key()),
		Date:     date,
		TimeSlot: req.TimeSlot,
		Service:  req.Service,
		// The booking flow commits straight to confirmed; pending is
		// reserved for flows that need explicit shop approval.
		Status: model.AppointmentStatusConfirmed,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		if apperrors.Is(err, apperrors.CodeSlotTaken) {
			return nil, err
		}
		return nil, apperrors.NewTransient("could not commit booking", err)
	}

	s.afterCommit(ctx, apt)
	return apt, nil
}

// afterCommit mirrors the booking into the client's cached list, drops
// the stale slot snapshot, records the outbox event and sends the
// confirmation mail. All of it is best-effort.
func (s *Service) afterCommit(ctx context.Context, apt *model.Appointment) {
	shopName := s.lookupShopName(ctx, apt.ShopID)

	if s.store != nil {
		s.mirrorIntoCache(ctx, apt, shopName)
		if err := s.store.Delete(ctx, cache.SlotSnapshotKey(apt.ShopID.Key(), apt.DateKey())); err != nil {
			s.logger.Error(err, "failed to invalidate slot snapshot", "shop_id", apt.ShopID.Key())
		}
	}

	if s.outbox != nil {
		payload, err := json.Marshal(apt)
		if err == nil {
			err = s.outbox.Create(ctx, &model.OutboxEvent{
				EventType: "appointment.created",
				Payload:   payload,
			})
		}
		if err != nil {
			s.logger.Error(err, "failed to record booking event", "appointment_id", apt.ID.String())
		}
	}

	s.sendConfirmation(ctx, apt, shopName)
}

func (s *Service) mirrorIntoCache(ctx context.Context, apt *model.Appointment, shopName string) {
	clientID, err := uuid.Parse(apt.ClientID.Key())
	if err != nil {
		return
	}
	identity := model.Identity{ActorID: clientID, Role: model.RoleClient}

	var cached model.CachedAppointmentSet
	found, err := s.store.Get(ctx, identity.CacheKey(), &cached)
	if err != nil {
		s.logger.Error(err, "failed to read cached appointments", "actor_id", clientID.String())
		return
	}
	if !found {
		// No entry to extend. A seeded one-item list would stand in for
		// the actor's full set until the freshness window expires; the
		// next list request builds the real set instead.
		return
	}

	// FetchedAt stays put: the mirror extends the entry's contents, not
	// its freshness window.
	cached.Appointments = append(cached.Appointments, model.EnrichedAppointment{Appointment: *apt, ShopName: shopName})

	if err := s.store.Set(ctx, identity.CacheKey(), cached, cache.AppointmentListTTL); err != nil {
		s.logger.Error(err, "failed to mirror booking into cache", "actor_id", clientID.String())
	}
}

func (s *Service) lookupShopName(ctx context.Context, ref model.Ref) string {
	shopID, err := uuid.Parse(ref.Key())
	if err != nil {
		return ""
	}
	shop, err := s.shopRepo.Get(ctx, shopID)
	if err != nil {
		return ""
	}
	return shop.Name
}

func (s *Service) sendConfirmation(ctx context.Context, apt *model.Appointment, shopName string) {
	if s.emailSvc == nil || s.userRepo == nil {
		return
	}
	clientID, err := uuid.Parse(apt.ClientID.Key())
	if err != nil {
		return
	}
	client, err := s.userRepo.Get(ctx, clientID)
	if err != nil {
		return
	}
	if shopName == "" {
		shopName = "Barbershop"
	}
	if err := s.emailSvc.SendBookingConfirmation(ctx, client.Email, apt, shopName); err != nil {
		s.logger.Error(err, "failed to send booking confirmation", "appointment_id", apt.ID.String())
	}
}

func validateBookingRequest(req *model.CreateAppointmentRequest) error {
	switch {
	case req.ClientID.IsZero():
		// No placeholder fallback: a booking without a client is a
		// request error, not something to attribute to a default actor.
		return apperrors.NewValidation("clientId is required")
	case req.ShopID.IsZero():
		return apperrors.NewValidation("shopId is required")
	case req.Date == "":
		return apperrors.NewValidation("date is required")
	case req.TimeSlot == "":
		return apperrors.NewValidation("timeSlot is required")
	case req.Service == "":
		return apperrors.NewValidation("service is required")
	}
	return nil
}
