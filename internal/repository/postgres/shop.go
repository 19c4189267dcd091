package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/barberhq/booking-api/internal/model"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
)

const shopColumns = `
	id, owner_user_id, name, location, services, images, reviews,
	created_at, updated_at
`

func (r *shopRepository) Create(ctx context.Context, shop *model.Shop) error {
	query := `
		INSERT INTO shops (
			id, owner_user_id, name, location, services, images, reviews,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if shop.ID == uuid.Nil {
		shop.ID = uuid.New()
	}
	shop.CreatedAt = time.Now()
	shop.UpdatedAt = shop.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		shop.ID,
		shop.OwnerUserID,
		shop.Name,
		shop.Location,
		shop.Services,
		shop.Images,
		shop.Reviews,
		shop.CreatedAt,
		shop.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}
	return nil
}

func (r *shopRepository) Get(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`

	var shop model.Shop
	err := r.db.GetContext(ctx, &shop, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("shop", err)
		}
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return &shop, nil
}

func (r *shopRepository) GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE owner_user_id = $1`

	var shop model.Shop
	err := r.db.GetContext(ctx, &shop, query, ownerUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("shop", err)
		}
		return nil, fmt.Errorf("failed to get shop by owner: %w", err)
	}
	return &shop, nil
}

func (r *shopRepository) Update(ctx context.Context, shop *model.Shop) error {
	query := `
		UPDATE shops
		SET name = $1, location = $2, services = $3, images = $4, reviews = $5, updated_at = $6
		WHERE id = $7
	`
	shop.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		shop.Name,
		shop.Location,
		shop.Services,
		shop.Images,
		shop.Reviews,
		shop.UpdatedAt,
		shop.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shop: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("shop", sql.ErrNoRows)
	}

	return nil
}

func (r *shopRepository) List(ctx context.Context) ([]*model.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops ORDER BY name ASC`

	var shops []*model.Shop
	if err := r.db.SelectContext(ctx, &shops, query); err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	return shops, nil
}
