package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MikeMC777/plumbstore/internal/db"
	"github.com/MikeMC777/plumbstore/internal/logx"
)

type Service struct {
	tx   db.TxRunner
	repo Repository
}

func NewService(tx db.TxRunner, repo Repository) *Service {
	return &Service{tx: tx, repo: repo}
}

// Registration is the body of POST /api/account/register.
type Registration struct {
	Details
	Password string `json:"password" example:"s3cret-pass"`
}

// AddressInput is a shipping address as submitted at checkout.
type AddressInput struct {
	Line1    string `json:"line1"    example:"1 Mill Lane"`
	Line2    string `json:"line2"`
	City     string `json:"city"     example:"Leeds"`
	County   string `json:"county"`
	Postcode string `json:"postcode" example:"LS1 4AP"`
	Country  string `json:"country"  example:"GB"`
}

func (a AddressInput) validate() error {
	if strings.TrimSpace(a.Line1) == "" || strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.Postcode) == "" {
		return ErrInvalidAddress
	}
	return nil
}

// Register creates an authenticated account. A guest who already checked
// out with the same email is upgraded in place so their orders follow them.
func (s *Service) Register(ctx context.Context, in Registration) (*User, error) {
	d := in.Details.normalized()
	if err := d.validate(); err != nil {
		return nil, err
	}
	if len(in.Password) < 8 {
		return nil, ErrWeakPassword
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var out *User
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByEmail(ctx, d.Email)
		switch {
		case err == nil && existing.Role == RoleAuthenticated:
			return ErrAlreadyExists
		case err == nil:
			existing.FirstName, existing.LastName = d.FirstName, d.LastName
			if d.Phone != "" {
				existing.Phone = d.Phone
			}
			existing.Role = RoleAuthenticated
			existing.PasswordHash = hash
			if err := s.repo.Update(ctx, existing); err != nil {
				return err
			}
			logx.From(ctx).Info("guest upgraded", zap.String("user_id", existing.ID))
			out = existing
			return nil
		case !errors.Is(err, ErrNotFound):
			return err
		}

		u := &User{
			ID:           uuid.NewString(),
			Email:        d.Email,
			FirstName:    d.FirstName,
			LastName:     d.LastName,
			Phone:        d.Phone,
			Role:         RoleAuthenticated,
			PasswordHash: hash,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.Role != RoleAuthenticated || !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// EnsureGuest resolves the customer for a checkout: preferredID (the
// authenticated user or the guest remembered in the session) when it still
// exists, else the guest already holding this email, else a new guest.
// A guest always ends up carrying the submitted details, and a session guest
// changing email moves to the guest already holding the new one.
// Authenticated accounts are never claimed by email.
func (s *Service) EnsureGuest(ctx context.Context, preferredID string, in Details) (*User, error) {
	d := in.normalized()
	if err := d.validate(); err != nil {
		return nil, err
	}

	var out *User
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if preferredID != "" {
			u, err := s.repo.GetByID(ctx, preferredID)
			switch {
			case errors.Is(err, ErrNotFound):
			case err != nil:
				return err
			case u.Role != RoleGuest:
				out = u
				return nil
			default:
				out, err = s.sessionGuest(ctx, u, d)
				return err
			}
		}

		u, err := s.repo.GetByEmail(ctx, d.Email)
		switch {
		case err == nil && u.Role == RoleGuest:
			out, err = s.refreshGuest(ctx, u, d)
			return err
		case err == nil:
			return ErrAlreadyExists
		case !errors.Is(err, ErrNotFound):
			return err
		}

		u = &User{
			ID:        uuid.NewString(),
			Email:     d.Email,
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Phone:     d.Phone,
			Role:      RoleGuest,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// sessionGuest applies d to the session's guest. A changed email moves onto
// this guest when nobody holds it, else to the guest already holding it.
func (s *Service) sessionGuest(ctx context.Context, u *User, d Details) (*User, error) {
	if u.Email != d.Email {
		other, err := s.repo.GetByEmail(ctx, d.Email)
		switch {
		case errors.Is(err, ErrNotFound):
			u.Email = d.Email
		case err != nil:
			return nil, err
		case other.Role != RoleGuest:
			return nil, ErrAlreadyExists
		default:
			u = other
		}
	}
	return s.refreshGuest(ctx, u, d)
}

func (s *Service) refreshGuest(ctx context.Context, u *User, d Details) (*User, error) {
	u.FirstName, u.LastName, u.Phone = d.FirstName, d.LastName, d.Phone
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) AddAddress(ctx context.Context, userID string, in AddressInput) (*Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	country := strings.ToUpper(strings.TrimSpace(in.Country))
	if country == "" {
		country = "GB"
	}
	a := &Address{
		ID:       uuid.NewString(),
		UserID:   userID,
		Line1:    strings.TrimSpace(in.Line1),
		Line2:    strings.TrimSpace(in.Line2),
		City:     strings.TrimSpace(in.City),
		County:   strings.TrimSpace(in.County),
		Postcode: strings.ToUpper(strings.TrimSpace(in.Postcode)),
		Country:  country,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.repo.CreateAddress(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListAddresses(ctx context.Context, userID string) ([]Address, error) {
	return s.repo.ListAddresses(ctx, userID)
}

// Address returns the address only when it belongs to userID.
func (s *Service) Address(ctx context.Context, userID, id string) (*Address, error) {
	a, err := s.repo.GetAddress(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrAddressNotFound
	}
	return a, nil
}
