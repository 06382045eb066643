package domain

import "time"

type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleAdmin    UserRole = "ADMIN"
)

func (r UserRole) Valid() bool {
	return r == UserRoleCustomer || r == UserRoleAdmin
}

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
