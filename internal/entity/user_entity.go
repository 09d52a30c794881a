package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// User carries the denormalized effective-entitlement pointer PlanId, updated
// by the lifecycle engine on activation and downgrade.
type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash *string
	FullName     string
	PlanId       uuid.UUID
	CountryCode  *string
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
