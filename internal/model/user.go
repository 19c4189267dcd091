package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleClient Role = "client"
	RoleOwner  Role = "owner"
)

func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleOwner
}

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	Role         Role      `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Identity is the resolved actor every appointment query is scoped to.
type Identity struct {
	ActorID uuid.UUID `json:"actorId"`
	Role    Role      `json:"role"`
}

// CacheKey is the reconciler cache key for this actor.
func (i Identity) CacheKey() string {
	return "appointments:" + i.ActorID.String() + ":" + string(i.Role)
}
