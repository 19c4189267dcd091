// Package appointment is the client-facing orchestration over cached and
// persisted appointment state: it merges the cache with fresh fetches,
// enriches bare references with display names, and keeps the short-lived
// per-actor cache.
package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/barberhq/booking-api/internal/cache"
	"github.com/barberhq/booking-api/internal/email"
	"github.com/barberhq/booking-api/internal/model"
	"github.com/barberhq/booking-api/internal/repository"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
	"github.com/barberhq/booking-api/pkg/logger"
)

// ShopNamePlaceholder is attached when a follow-up shop lookup fails.
// A readable placeholder beats failing the whole list.
const ShopNamePlaceholder = "Barbershop"

type Service struct {
	repo     repository.AppointmentRepository
	shopRepo repository.ShopRepository
	userRepo repository.UserRepository
	store    cache.Store
	emailSvc email.Service
	logger   *logger.Logger
	listTTL  time.Duration
	now      func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	shopRepo repository.ShopRepository,
	userRepo repository.UserRepository,
	store cache.Store,
	emailSvc email.Service,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &Service{
		repo:     repo,
		shopRepo: shopRepo,
		userRepo: userRepo,
		store:    store,
		emailSvc: emailSvc,
		logger:   log,
		listTTL:  cache.AppointmentListTTL,
		now:      time.Now,
	}
}

// ListFor returns the appointments to show the given actor.
//
// Fast path: a cache entry younger than the freshness window is returned
// without touching the repository. Otherwise the indexed, role-scoped
// query runs first; if it yields nothing or fails, the full set is
// fetched and filtered client-side by normalized id comparison. The
// enriched result is written back to the cache before returning.
func (s *Service) ListFor(ctx context.Context, identity *model.Identity) ([]model.EnrichedAppointment, error) {
	key := identity.CacheKey()

	var cached model.CachedAppointmentSet
	haveCached := false
	if s.store != nil {
		found, err := s.store.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Error(err, "appointment cache read failed", "actor_id", identity.ActorID.String())
		} else if found {
			haveCached = true
			if s.now().Sub(cached.FetchedAt) < s.listTTL {
				return cached.Appointments, nil
			}
		}
	}

	appointments, err := s.fetchFor(ctx, identity)
	if err != nil {
		// Stale cache beats a blank screen.
		if haveCached {
			s.logger.Error(err, "fetch failed, serving stale cache", "actor_id", identity.ActorID.String())
			return cached.Appointments, nil
		}
		return nil, err
	}

	enriched := s.enrich(ctx, appointments)

	if s.store != nil {
		set := model.CachedAppointmentSet{Appointments: enriched, FetchedAt: s.now()}
		if err := s.store.Set(ctx, key, set, s.listTTL); err != nil {
			s.logger.Error(err, "failed to cache appointments", "actor_id", identity.ActorID.String())
		}
	}

	return enriched, nil
}

// fetchFor runs the cascading query strategy for one actor.
func (s *Service) fetchFor(ctx context.Context, identity *model.Identity) ([]*model.Appointment, error) {
	actorID := identity.ActorID.String()

	var indexed []*model.Appointment
	var indexedErr error

	switch identity.Role {
	case model.RoleOwner:
		shop, err := s.shopRepo.GetByOwner(ctx, identity.ActorID)
		if err != nil {
			indexedErr = err
		} else {
			indexed, indexedErr = s.repo.ListByShop(ctx, shop.ID.String())
			actorID = shop.ID.String()
		}
	default:
		indexed, indexedErr = s.repo.ListByClient(ctx, actorID)
	}

	if indexedErr == nil && len(indexed) > 0 {
		return indexed, nil
	}
	if indexedErr != nil {
		s.logger.Error(indexedErr, "indexed appointment query failed, falling back to full scan",
			"actor_id", identity.ActorID.String(), "role", string(identity.Role))
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		if indexedErr == nil {
			// Indexed path worked and was genuinely empty.
			return indexed, nil
		}
		return nil, apperrors.NewTransient("could not load appointments", err)
	}

	return filterByActor(all, identity.Role, actorID), nil
}

// filterByActor filters the full set by string-normalized id equality.
// Ref.Key() absorbs the raw-id vs nested-object representations, so the
// comparison is a plain string match.
func filterByActor(all []*model.Appointment, role model.Role, actorID string) []*model.Appointment {
	filtered := make([]*model.Appointment, 0, len(all))
	for _, apt := range all {
		switch role {
		case model.RoleOwner:
			if apt.ShopID.Key() == actorID {
				filtered = append(filtered, apt)
			}
		default:
			if apt.ClientID.Key() == actorID {
				filtered = append(filtered, apt)
			}
		}
	}
	return filtered
}

// enrich attaches shop and barber display names. Lookups are memoized per
// pass so one shop is never fetched twice; failures leave placeholders.
func (s *Service) enrich(ctx context.Context, appointments []*model.Appointment) []model.EnrichedAppointment {
	type shopInfo struct {
		name   string
		barber string
	}
	memo := make(map[string]shopInfo)

	lookup := func(shopRef model.Ref) shopInfo {
		keyID := shopRef.Key()
		if info, ok := memo[keyID]; ok {
			return info
		}

		info := shopInfo{name: ShopNamePlaceholder}
		if shopRef.Resolved() {
			info.name = shopRef.Name
		} else if shopID, err := uuid.Parse(keyID); err == nil {
			if shop, err := s.shopRepo.Get(ctx, shopID); err == nil {
				info.name = shop.Name
				if owner, err := s.userRepo.Get(ctx, shop.OwnerUserID); err == nil {
					info.barber = owner.Name
				}
			}
		}
		memo[keyID] = info
		return info
	}

	enriched := make([]model.EnrichedAppointment, 0, len(appointments))
	for _, apt := range appointments {
		info := lookup(apt.ShopID)
		enriched = append(enriched, model.EnrichedAppointment{
			Appointment: *apt,
			ShopName:    info.name,
			BarberName:  info.barber,
		})
	}
	return enriched
}

// ListAll returns every appointment, the fallback-filtering endpoint.
func (s *Service) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewTransient("could not load appointments", err)
	}
	return appointments, nil
}

func (s *Service) ListByShop(ctx context.Context, shopID string) ([]*model.Appointment, error) {
	appointments, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, apperrors.NewTransient("could not load shop appointments", err)
	}
	return appointments, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID string) ([]*model.Appointment, error) {
	appointments, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, apperrors.NewTransient("could not load client appointments", err)
	}
	return appointments, nil
}

// UpdateStatus transitions an appointment to any status. The state
// machine pending -> confirmed -> {cancelled|completed} describes
// expected usage; it is not enforced here.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidation("unknown status: " + string(status))
	}

	apt, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.invalidateFor(ctx, apt)
	if status == model.AppointmentStatusCancelled {
		s.sendCancellation(ctx, apt)
	}
	return apt, nil
}

// Cancel performs a soft cancel: the appointment keeps its row and its
// history, it just stops occupying the slot.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.UpdateStatus(ctx, id, model.AppointmentStatusCancelled)
}

// invalidateFor drops the cache entries a status change makes stale: the
// actor's list and the shop/date slot snapshot.
func (s *Service) invalidateFor(ctx context.Context, apt *model.Appointment) {
	if s.store == nil {
		return
	}

	if clientID, err := uuid.Parse(apt.ClientID.Key()); err == nil {
		identity := model.Identity{ActorID: clientID, Role: model.RoleClient}
		if err := s.store.Delete(ctx, identity.CacheKey()); err != nil {
			s.logger.Error(err, "failed to invalidate client cache", "appointment_id", apt.ID.String())
		}
	}

	snapshotKey := cache.SlotSnapshotKey(apt.ShopID.Key(), apt.DateKey())
	if err := s.store.Delete(ctx, snapshotKey); err != nil {
		s.logger.Error(err, "failed to invalidate slot snapshot", "appointment_id", apt.ID.String())
	}
}

// sendCancellation mails the client, best-effort.
func (s *Service) sendCancellation(ctx context.Context, apt *model.Appointment) {
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

	shopName := ShopNamePlaceholder
	if apt.ShopID.Resolved() {
		shopName = apt.ShopID.Name
	} else if shopID, err := uuid.Parse(apt.ShopID.Key()); err == nil {
		if shop, err := s.shopRepo.Get(ctx, shopID); err == nil {
			shopName = shop.Name
		}
	}

	if err := s.emailSvc.SendCancellation(ctx, client.Email, apt, shopName); err != nil {
		s.logger.Error(err, "failed to send cancellation mail", "appointment_id", apt.ID.String())
	}
}
