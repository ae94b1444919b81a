package domain

import "time"

type Role string

const (
	RoleBuyer Role = "buyer"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleBuyer || r == RoleAdmin
}

// User is a registered identity. Email is the login key and is unique.
// The hash fields never leave the persistence layer in a response.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string `json:"-"`
	AnswerHash   string `json:"-"`
	Address      string
	Phone        string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
