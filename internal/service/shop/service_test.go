package shop

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberhq/booking-api/internal/model"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
)

type fakeShopRepo struct {
	shops map[uuid.UUID]*model.Shop
}

func (f *fakeShopRepo) Create(_ context.Context, shop *model.Shop) error {
	if f.shops == nil {
		f.shops = make(map[uuid.UUID]*model.Shop)
	}
	if shop.ID == uuid.Nil {
		shop.ID = uuid.New()
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
	if _, ok := f.shops[shop.ID]; !ok {
		return apperrors.NewNotFound("shop", errors.New("no rows"))
	}
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

func TestUpsertCreatesThenUpdates(t *testing.T) {
	svc := NewService(&fakeShopRepo{})
	ownerID := uuid.New()
	ctx := context.Background()

	created, err := svc.Upsert(ctx, ownerID, &model.UpsertShopRequest{
		Name:     "Fade Factory",
		Location: "12 High St",
	})
	require.NoError(t, err)
	assert.Equal(t, ownerID, created.OwnerUserID)

	updated, err := svc.Upsert(ctx, ownerID, &model.UpsertShopRequest{
		Name:     "Fade Factory II",
		Location: "14 High St",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID, "an owner keeps a single shop")
	assert.Equal(t, "Fade Factory II", updated.Name)

	got, err := svc.GetByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "Fade Factory II", got.Name)
}

func TestUpsertRequiresName(t *testing.T) {
	svc := NewService(&fakeShopRepo{})

	_, err := svc.Upsert(context.Background(), uuid.New(), &model.UpsertShopRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestGetUnknownShop(t *testing.T) {
	svc := NewService(&fakeShopRepo{})

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}
