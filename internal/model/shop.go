package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

type Shop struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	OwnerUserID uuid.UUID    `db:"owner_user_id" json:"ownerUserId"`
	Name        string       `db:"name" json:"name"`
	Location    string       `db:"location" json:"location"`
	Services    ShopServices `db:"services" json:"services"`
	Images      ImageList    `db:"images" json:"images"`
	Reviews     ReviewList   `db:"reviews" json:"reviews"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

type ShopService struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Duration int     `json:"duration"`
}

type Review struct {
	UserID  string    `json:"userId"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

type ShopServices []ShopService

func (s ShopServices) Value() (driver.Value, error) { return jsonValue(s) }
func (s *ShopServices) Scan(src interface{}) error  { return jsonScan(src, s) }

type ImageList []string

func (l ImageList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *ImageList) Scan(src interface{}) error  { return jsonScan(src, l) }

type ReviewList []Review

func (l ReviewList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *ReviewList) Scan(src interface{}) error  { return jsonScan(src, l) }

type UpsertShopRequest struct {
	Name     string        `json:"name" binding:"required"`
	Location string        `json:"location"`
	Services []ShopService `json:"services"`
	Images   []string      `json:"images"`
}
