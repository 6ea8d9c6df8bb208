package user

import (
	"context"
	"errors"
	"time"

	"github.com/MikeMC777/plumbstore/internal/db"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrNameRequired       = errors.New("first and last name are required")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrAddressNotFound    = errors.New("address not found")
	ErrInvalidAddress     = errors.New("line1, city and postcode are required")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	CreateAddress(ctx context.Context, a *Address) error
	GetAddress(ctx context.Context, id string) (*Address, error)
	ListAddresses(ctx context.Context, userID string) ([]Address, error)
}

type PGRepo struct{ db *db.Pool }

func NewPGRepo(pool *db.Pool) *PGRepo { return &PGRepo{db: pool} }

const userCols = `id, email, first_name, last_name, phone, role, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, u *User) error {
	return row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
}

func (r *PGRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.Q(ctx).QueryRow(ctx, `
		INSERT INTO users (id, email, first_name, last_name, phone, role, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.FirstName, u.LastName, u.Phone, u.Role, u.PasswordHash).Scan(&u.CreatedAt, &u.UpdatedAt)
	if db.IsUniqueViolation(err, "") {
		return ErrAlreadyExists
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, `id::text = $1`, id)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `email = $1`, NormalizeEmail(email))
}

func (r *PGRepo) getOne(ctx context.Context, where, arg string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var u User
	if err := scanUser(r.db.Q(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE `+where, arg), &u); err != nil {
		if db.NoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Update rewrites the mutable profile fields, email, role and password hash.
func (r *PGRepo) Update(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Q(ctx).Exec(ctx, `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, phone = $5, role = $6, password_hash = $7, updated_at = NOW()
		WHERE id::text = $1
	`, u.ID, u.Email, u.FirstName, u.LastName, u.Phone, u.Role, u.PasswordHash)
	if db.IsUniqueViolation(err, "") {
		return ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) CreateAddress(ctx context.Context, a *Address) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.Q(ctx).QueryRow(ctx, `
		INSERT INTO addresses (id, user_id, line1, line2, city, county, postcode, country, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
		RETURNING created_at
	`, a.ID, a.UserID, a.Line1, a.Line2, a.City, a.County, a.Postcode, a.Country).Scan(&a.CreatedAt)
}

const addressCols = `id, user_id, line1, line2, city, county, postcode, country, created_at`

func scanAddress(row interface{ Scan(...any) error }, a *Address) error {
	return row.Scan(&a.ID, &a.UserID, &a.Line1, &a.Line2, &a.City, &a.County, &a.Postcode, &a.Country, &a.CreatedAt)
}

func (r *PGRepo) GetAddress(ctx context.Context, id string) (*Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var a Address
	if err := scanAddress(r.db.Q(ctx).QueryRow(ctx, `SELECT `+addressCols+` FROM addresses WHERE id::text = $1`, id), &a); err != nil {
		if db.NoRows(err) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepo) ListAddresses(ctx context.Context, userID string) ([]Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Q(ctx).Query(ctx, `
		SELECT `+addressCols+` FROM addresses WHERE user_id::text = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Address{}
	for rows.Next() {
		var a Address
		if err := scanAddress(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
