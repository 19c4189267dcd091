package booking

import (
	"context"
	"time"

	"github.com/barberhq/booking-api/internal/cache"
	"github.com/barberhq/booking-api/internal/model"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
)

// AvailableSlots derives the per-date slot states for a shop. Display is
// fail-open: if the booked-appointment query fails, every catalog slot is
// reported available instead of blocking the screen. Booking commits stay
// strict regardless of what this returns.
func (s *Service) AvailableSlots(ctx context.Context, shopID, dateStr string) (*model.AvailableSlotsResponse, error) {
	if shopID == "" {
		return nil, apperrors.NewValidation("shopId is required")
	}
	date, err := time.Parse(model.DateLayout, dateStr)
	if err != nil {
		return nil, apperrors.NewValidation("invalid date, expected " + model.DateLayout)
	}

	key := cache.SlotSnapshotKey(shopID, dateStr)
	if s.store != nil {
		var cached model.AvailableSlotsResponse
		if found, err := s.store.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	var states []model.SlotState
	appointments, err := s.repo.ListByShopAndDate(ctx, shopID, date)
	if err != nil {
		s.logger.Error(err, "slot query failed, falling back to full catalog", "shop_id", shopID)
		states = s.catalog.AllOpen()
	} else {
		states = s.catalog.Availability(appointments)
	}

	resp := &model.AvailableSlotsResponse{Slots: states}
	for _, st := range states {
		if !st.IsBooked {
			resp.AvailableSlots = append(resp.AvailableSlots, st.TimeSlot)
		}
	}

	if s.store != nil && err == nil {
		if cacheErr := s.store.Set(ctx, key, resp, cache.SlotSnapshotTTL); cacheErr != nil {
			s.logger.Error(cacheErr, "failed to cache slot snapshot", "shop_id", shopID)
		}
	}

	return resp, nil
}
