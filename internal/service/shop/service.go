package shop

import (
	"context"

	"github.com/google/uuid"

	"github.com/barberhq/booking-api/internal/model"
	"github.com/barberhq/booking-api/internal/repository"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
)

type Service struct {
	repo repository.ShopRepository
}

func NewService(repo repository.ShopRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Shop, error) {
	shops, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewTransient("could not load shops", err)
	}
	return shops, nil
}

// Upsert creates the owner's shop on first call and updates it after.
// One shop per owner.
func (s *Service) Upsert(ctx context.Context, ownerID uuid.UUID, req *model.UpsertShopRequest) (*model.Shop, error) {
	if req.Name == "" {
		return nil, apperrors.NewValidation("shop name is required")
	}

	existing, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		if !apperrors.Is(err, apperrors.CodeNotFound) {
			return nil, err
		}
		shop := &model.Shop{
			OwnerUserID: ownerID,
			Name:        req.Name,
			Location:    req.Location,
			Services:    req.Services,
			Images:      req.Images,
		}
		if err := s.repo.Create(ctx, shop); err != nil {
			return nil, apperrors.NewTransient("could not create shop", err)
		}
		return shop, nil
	}

	existing.Name = req.Name
	existing.Location = req.Location
	existing.Services = req.Services
	existing.Images = req.Images
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Shop, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}
