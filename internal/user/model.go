package user

import (
	"strings"
	"time"
)

type Role string

const (
	RoleGuest         Role = "guest"
	RoleAuthenticated Role = "authenticated"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Address struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Line1     string    `json:"line1"`
	Line2     string    `json:"line2,omitempty"`
	City      string    `json:"city"`
	County    string    `json:"county,omitempty"`
	Postcode  string    `json:"postcode"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

// Details are the contact fields collected at checkout or registration.
type Details struct {
	Email     string `json:"email"      example:"jo@example.com"`
	FirstName string `json:"first_name" example:"Jo"`
	LastName  string `json:"last_name"  example:"Bloggs"`
	Phone     string `json:"phone"      example:"07700900123"`
}

func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (d Details) normalized() Details {
	d.Email = NormalizeEmail(d.Email)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Phone = strings.TrimSpace(d.Phone)
	return d
}

func (d Details) validate() error {
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return ErrInvalidEmail
	}
	if d.FirstName == "" || d.LastName == "" {
		return ErrNameRequired
	}
	return nil
}
