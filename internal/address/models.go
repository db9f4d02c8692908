package address

import (
	"strings"
	"time"
)

type Address struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Label      string    `json:"label"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Input is what a customer submits for a new address.
type Input struct {
	Label      string `json:"label" validate:"max=50"`
	FullName   string `json:"full_name" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,phone"`
	Street     string `json:"street" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=12"`
	Country    string `json:"country" validate:"max=56"`
	IsDefault  bool   `json:"is_default"`
}

const (
	defaultLabel   = "Home"
	defaultCountry = "India"
)

func (in Input) normalized() Input {
	trim := strings.TrimSpace
	in.Label, in.FullName, in.Phone = trim(in.Label), trim(in.FullName), trim(in.Phone)
	in.Street, in.City, in.State = trim(in.Street), trim(in.City), trim(in.State)
	in.PostalCode, in.Country = trim(in.PostalCode), trim(in.Country)
	if in.Label == "" {
		in.Label = defaultLabel
	}
	if in.Country == "" {
		in.Country = defaultCountry
	}
	return in
}

// OneLine renders the address the way order confirmations show it.
func (a Address) OneLine() string {
	return a.Street + ", " + a.City + ", " + a.State + " - " + a.PostalCode
}
