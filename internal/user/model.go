package user

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is the single canonical role representation. Every principal has
// exactly one role; no endpoint changes it after creation.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	Email     string    `bun:"email,unique,notnull" json:"email" validate:"required,email"`
	Password  string    `bun:"password,notnull" json:"-"` // Never expose password in JSON
	FirstName string    `bun:"first_name" json:"firstName"`
	LastName  string    `bun:"last_name" json:"lastName"`
	Role      Role      `bun:"role,notnull" json:"role" validate:"required,oneof=admin faculty student"`
	IsActive  bool      `bun:"is_active,notnull,default:true" json:"isActive"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
