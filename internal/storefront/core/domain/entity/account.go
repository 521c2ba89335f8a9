package entity

import "time"

type Customer struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CustomerFilter struct {
	Query  string
	Active *bool
	Page   Page
}

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleEditor  Role = "editor"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identifies who is shopping: a logged-in customer or a guest session.
type Actor struct {
	CustomerID string
	SessionID  string
}

func (a Actor) Authenticated() bool { return a.CustomerID != "" }

func (a Actor) Empty() bool { return a.CustomerID == "" && a.SessionID == "" }
