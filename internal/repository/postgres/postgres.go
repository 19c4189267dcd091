package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/barberhq/booking-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

type shopRepository struct {
	db *sqlx.DB
}

type userRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewShopRepository(db *sqlx.DB) repository.ShopRepository {
	return &shopRepository{db: db}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}
