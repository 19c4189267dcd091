package booking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberhq/booking-api/internal/model"
	"github.com/barberhq/booking-api/internal/slot"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
)

// fakeAppointmentRepo mimics the storage layer including the partial
// unique index over active (shop, date, slot) rows.
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments []*model.Appointment
	findErr      error
	findMiss     bool
	createErr    error
	listErr      error
}

func (f *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.appointments {
		if existing.Status.IsActive() &&
			existing.ShopID.Key() == apt.ShopID.Key() &&
			existing.DateKey() == apt.DateKey() &&
			existing.TimeSlot == apt.TimeSlot {
			return apperrors.NewSlotTaken(apt.DateKey(), apt.TimeSlot)
		}
	}
	cp := *apt
	f.appointments = append(f.appointments, &cp)
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, apt := range f.appointments {
		if apt.ID == id {
			cp := *apt
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFound("appointment", errors.New("no rows"))
}

func (f *fakeAppointmentRepo) List(_ context.Context) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*model.Appointment(nil), f.appointments...), nil
}

func (f *fakeAppointmentRepo) ListByShop(_ context.Context, shopID string) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range f.appointments {
		if apt.ShopID.Key() == shopID {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListByClient(_ context.Context, clientID string) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range f.appointments {
		if apt.ClientID.Key() == clientID {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListByShopAndDate(_ context.Context, shopID string, date time.Time) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	dateKey := date.Format(model.DateLayout)
	var out []*model.Appointment
	for _, apt := range f.appointments {
		if apt.ShopID.Key() == shopID && apt.DateKey() == dateKey {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, apt := range f.appointments {
		if apt.ID == id {
			apt.Status = status
			apt.UpdatedAt = time.Now()
			cp := *apt
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFound("appointment", errors.New("no rows"))
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, apt := range f.appointments {
		if apt.ID == id {
			f.appointments = append(f.appointments[:i], f.appointments[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFound("appointment", errors.New("no rows"))
}

func (f *fakeAppointmentRepo) FindActiveBySlot(_ context.Context, shopID string, date time.Time, timeSlot string) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.findMiss {
		return nil, nil
	}
	dateKey := date.Format(model.DateLayout)
	for _, apt := range f.appointments {
		if apt.Status.IsActive() && apt.ShopID.Key() == shopID && apt.DateKey() == dateKey && apt.TimeSlot == timeSlot {
			cp := *apt
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointmentRepo) MarkCompletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, apt := range f.appointments {
		if apt.Status == model.AppointmentStatusConfirmed && apt.Date.Before(cutoff) {
			apt.Status = model.AppointmentStatusCompleted
			n++
		}
	}
	return n, nil
}

type fakeShopRepo struct {
	shops map[uuid.UUID]*model.Shop
}

func (f *fakeShopRepo) Create(_ context.Context, shop *model.Shop) error {
	if f.shops == nil {
		f.shops = make(map[uuid.UUID]*model.Shop)
	}
	f.shops[shop.ID] = shop
	return nil
}

func (f *fakeShopRepo) Get(_ context.Context, id uuid.UUID) (*model.Shop, error) {
	if shop, ok := f.shops[id]; ok {
		return shop, nil
	}
	return nil, apperrors.NewNotFound("shop", errors.New("no rows"))
}

func (f *fakeShopRepo) GetByOwner(_ context.Context, ownerUserID uuid.UUID) (*model.Shop, error) {
	for _, shop := range f.shops {
		if shop.OwnerUserID == ownerUserID {
			return shop, nil
		}
	}
	return nil, apperrors.NewNotFound("shop", errors.New("no rows"))
}

func (f *fakeShopRepo) Update(_ context.Context, shop *model.Shop) error {
	f.shops[shop.ID] = shop
	return nil
}

func (f *fakeShopRepo) List(_ context.Context) ([]*model.Shop, error) {
	var out []*model.Shop
	for _, shop := range f.shops {
		out = append(out, shop)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.users == nil {
		f.users = make(map[uuid.UUID]*model.User)
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, apperrors.NewNotFound("user", errors.New("no rows"))
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperrors.NewNotFound("user", errors.New("no rows"))
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeOutboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, errorMessage *string) error {
	for _, event := range f.events {
		if event.ID == id {
			event.Status = status
			event.ErrorMessage = errorMessage
		}
	}
	return nil
}

// fakeStore is an in-memory cache.Store with JSON round-tripping, so it
// behaves like the real backends rather than sharing pointers.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string][]byte)}
}

func (f *fakeStore) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (f *fakeStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = raw
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

type fakeEmail struct {
	confirmations []string
}

func (f *fakeEmail) SendBookingConfirmation(_ context.Context, to string, _ *model.Appointment, _ string) error {
	f.confirmations = append(f.confirmations, to)
	return nil
}

func (f *fakeEmail) SendCancellation(_ context.Context, _ string, _ *model.Appointment, _ string) error {
	return nil
}

func newBookingService(repo *fakeAppointmentRepo) (*Service, *fakeOutboxRepo, *fakeEmail) {
	outbox := &fakeOutboxRepo{}
	mail := &fakeEmail{}
	svc := NewService(repo, &fakeShopRepo{}, &fakeUserRepo{}, outbox, newFakeStore(), mail, slot.Default(), nil)
	return svc, outbox, mail
}

func bookingRequest(clientID, shopID, date, timeSlot string) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		ClientID: model.NewRef(clientID),
		ShopID:   model.NewRef(shopID),
		Date:     date,
		TimeSlot: timeSlot,
		Service:  "haircut",
	}
}

func TestTryBookCommitsConfirmed(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	svc, outbox, _ := newBookingService(repo)

	apt, err := svc.TryBook(context.Background(), bookingRequest("c1", "s1", "2026-09-01", "9:00 AM"))
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)
	assert.Equal(t, "c1", apt.ClientID.Key())
	assert.Equal(t, "2026-09-01", apt.DateKey())
	require.Len(t, outbox.events, 1)
	assert.Equal(t, "appointment.created", outbox.events[0].EventType)
}

func TestTryBookRejectsOccupiedSlot(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	svc, _, _ := newBookingService(repo)

	_, err := svc.TryBook(context.Background(), bookingRequest("c1", "s1", "2026-09-01", "9:00 AM"))
	require.NoError(t, err)

	_, err = svc.TryBook(context.Background(), bookingRequest("c2", "s1", "2026-09-01", "9:00 AM"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSlotTaken, apperrors.CodeOf(err))

	// Same label on another date or shop is fine.
	_, err = svc.TryBook(context.Background(), bookingRequest("c2", "s1", "2026-09-02", "9:00 AM"))
	assert.NoError(t, err)
	_, err = svc.TryBook(context.Background(), bookingRequest("c2", "s2", "2026-09-01", "9:00 AM"))
	assert.NoError(t, err)
}

func TestTryBookSurfacesStorageConflict(t *testing.T) {
	// Even when the advisory pre-check sees a free slot (a lost race),
	// the storage uniqueness barrier decides and the conflict surfaces
	// as slot-taken, not as a double booking.
	repo := &fakeAppointmentRepo{}
	svc, _, _ := newBookingService(repo)

	_, err := svc.TryBook(context.Background(), bookingRequest("c1", "s1", "2026-09-01", "10:00 AM"))
	require.NoError(t, err)

	repo.findMiss = true
	_, err = svc.TryBook(context.Background(), bookingRequest("c2", "s1", "2026-09-01", "10:00 AM"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSlotTaken, apperrors.CodeOf(err))

	all, _ := repo.List(context.Background())
	assert.Len(t, all, 1)
}

func TestTryBookValidation(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	svc, _, _ := newBookingService(repo)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *model.CreateAppointmentRequest
	}{
		{"missing client", bookingRequest("", "s1", "2026-09-01", "9:00 AM")},
		{"missing shop", bookingRequest("c1", "", "2026-09-01", "9:00 AM")},
		{"missing date", bookingRequest("c1", "s1", "", "9:00 AM")},
		{"missing slot", bookingRequest("c1", "s1", "2026-09-01", "")},
		{"bad date format", bookingRequest("c1", "s1", "09/01/2026", "9:00 AM")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.TryBook(ctx, tc.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
		})
	}

	assert.Empty(t, repo.appointments, "no booking may be committed on validation failure")
}

func TestTryBookIsFailClosed(t *testing.T) {
	repo := &fakeAppointmentRepo{findErr: errors.New("connection refused")}
	svc, _, _ := newBookingService(repo)

	_, err := svc.TryBook(context.Background(), bookingRequest("c1", "s1", "2026-09-01", "9:00 AM"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeTransient, apperrors.CodeOf(err))
	assert.Empty(t, repo.appointments)
}

func TestTryBookAcceptsAdHocSlotLabels(t *testing.T) {
	// Labels outside the catalog are bookable; the catalog only drives
	// the availability display.
	repo := &fakeAppointmentRepo{}
	svc, _, _ := newBookingService(repo)

	apt, err := svc.TryBook(context.Background(), bookingRequest("c1", "s1", "2026-09-01", "7:30 PM"))
	require.NoError(t, err)
	assert.Equal(t, "7:30 PM", apt.TimeSlot)
}

func TestRebookAfterCancellation(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	svc, _, _ := newBookingService(repo)
	ctx := context.Background()

	apt, err := svc.TryBook(ctx, bookingRequest("c1", "s1", "2026-09-01", "11:00 AM"))
	require.NoError(t, err)

	_, err = svc.TryBook(ctx, bookingRequest("c2", "s1", "2026-09-01", "11:00 AM"))
	require.Error(t, err)

	_, err = repo.UpdateStatus(ctx, apt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	rebooked, err := svc.TryBook(ctx, bookingRequest("c2", "s1", "2026-09-01", "11:00 AM"))
	require.NoError(t, err)
	assert.Equal(t, "c2", rebooked.ClientID.Key())

	// Both rows survive: cancellation is a status change, not a delete.
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAvailableSlotsReflectsBookings(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	svc, _, _ := newBookingService(repo)
	ctx := context.Background()

	_, err := svc.TryBook(ctx, bookingRequest("c1", "s1", "2026-09-01", "9:00 AM"))
	require.NoError(t, err)

	resp, err := svc.AvailableSlots(ctx, "s1", "2026-09-01")
	require.NoError(t, err)

	assert.NotContains(t, resp.AvailableSlots, "9:00 AM")
	assert.Contains(t, resp.AvailableSlots, "10:00 AM")
	require.Len(t, resp.Slots, 7)
	assert.Equal(t, "9:00 AM", resp.Slots[0].TimeSlot)
	assert.True(t, resp.Slots[0].IsBooked)
}

func TestAvailableSlotsFailsOpen(t *testing.T) {
	repo := &fakeAppointmentRepo{listErr: errors.New("connection refused")}
	svc := NewService(repo, &fakeShopRepo{}, &fakeUserRepo{}, nil, nil, nil, slot.Default(), nil)

	resp, err := svc.AvailableSlots(context.Background(), "s1", "2026-09-01")
	require.NoError(t, err, "availability display must not propagate repository failures")
	assert.Len(t, resp.AvailableSlots, 7)
}

func TestAvailableSlotsValidation(t *testing.T) {
	svc, _, _ := newBookingService(&fakeAppointmentRepo{})

	_, err := svc.AvailableSlots(context.Background(), "", "2026-09-01")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	_, err = svc.AvailableSlots(context.Background(), "s1", "not-a-date")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestAvailableSlotsSnapshotInvalidatedByBooking(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	svc, _, _ := newBookingService(repo)
	ctx := context.Background()

	// Prime the snapshot while the day is empty.
	first, err := svc.AvailableSlots(ctx, "s1", "2026-09-01")
	require.NoError(t, err)
	assert.Len(t, first.AvailableSlots, 7)

	_, err = svc.TryBook(ctx, bookingRequest("c1", "s1", "2026-09-01", "9:00 AM"))
	require.NoError(t, err)

	second, err := svc.AvailableSlots(ctx, "s1", "2026-09-01")
	require.NoError(t, err)
	assert.NotContains(t, second.AvailableSlots, "9:00 AM",
		"booking must drop the cached snapshot for its shop and date")
}

func TestBookingMirrorsOnlyIntoExistingCache(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	store := newFakeStore()
	clientID := uuid.New()
	svc := NewService(repo, &fakeShopRepo{}, &fakeUserRepo{}, nil, store, nil, slot.Default(), nil)
	identity := model.Identity{ActorID: clientID, Role: model.RoleClient}
	ctx := context.Background()

	_, err := svc.TryBook(ctx, bookingRequest(clientID.String(), "s1", "2026-09-01", "9:00 AM"))
	require.NoError(t, err)
	assert.NotContains(t, store.entries, identity.CacheKey(),
		"a booking must not seed a one-item list for an uncached actor")

	// With an entry present the mirror appends, but the freshness stamp
	// belongs to the fetch that built the entry.
	fetchedAt := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(ctx, identity.CacheKey(), model.CachedAppointmentSet{FetchedAt: fetchedAt}, time.Minute))

	_, err = svc.TryBook(ctx, bookingRequest(clientID.String(), "s1", "2026-09-01", "10:00 AM"))
	require.NoError(t, err)

	var cached model.CachedAppointmentSet
	found, err := store.Get(ctx, identity.CacheKey(), &cached)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, cached.Appointments, 1)
	assert.Equal(t, "10:00 AM", cached.Appointments[0].TimeSlot)
	assert.True(t, cached.FetchedAt.Equal(fetchedAt), "the mirror must not renew the freshness window")
}

func TestBookingSendsConfirmationMail(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	users := &fakeUserRepo{}
	clientID := uuid.New()
	require.NoError(t, users.Create(context.Background(), &model.User{
		ID:    clientID,
		Email: "client@example.com",
		Role:  model.RoleClient,
	}))

	mail := &fakeEmail{}
	svc := NewService(repo, &fakeShopRepo{}, users, nil, nil, mail, slot.Default(), nil)

	_, err := svc.TryBook(context.Background(), bookingRequest(clientID.String(), uuid.NewString(), "2026-09-01", "9:00 AM"))
	require.NoError(t, err)

	require.Len(t, mail.confirmations, 1)
	assert.Equal(t, "client@example.com", mail.confirmations[0])
}
