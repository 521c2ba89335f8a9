package entity

import "time"

type AddressType string

const (
	AddressBilling  AddressType = "billing"
	AddressShipping AddressType = "shipping"
)

type Address struct {
	ID         string
	CustomerID string
	SessionID  string
	Type       AddressType
	FirstName  string
	LastName   string
	Company    string
	Email      string
	Phone      string
	CountryID  int64
	StateID    int64
	CityID     int64
	Street     string
	Zip        string
	IsDefault  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Snapshot is the denormalised copy of an address stored on an order, so later
// edits to the address book do not rewrite order history.
type AddressSnapshot struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Company     string `json:"company,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
	Country     string `json:"country"`
	State       string `json:"state"`
	City        string `json:"city"`
	Street      string `json:"street"`
	Zip         string `json:"zip"`
}

type Country struct {
	ID   int64
	Code string
	Name string
}

type State struct {
	ID        int64
	CountryID int64
	Name      string
}

type City struct {
	ID      int64
	StateID int64
	Name    string
}
