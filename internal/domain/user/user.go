package user

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrEmailRequired = errors.New("email is required")
	ErrInvalidRole   = errors.New("invalid role")
)

// Role determines which parts of the system an identity may use.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSales    Role = "sales"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSales, RoleAdmin:
		return true
	}
	return false
}

// CanManageOrders reports whether the role may view every order and move
// order statuses. Sales staff share this capability with admins.
func (r Role) CanManageOrders() bool {
	return r == RoleSales || r == RoleAdmin
}

// CanManageCatalog reports whether the role may create, edit or delete
// products and notification email settings.
func (r Role) CanManageCatalog() bool {
	return r == RoleAdmin
}

// User is a signed-in identity from the profiles table.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName returns the full name when set, otherwise the email address.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
