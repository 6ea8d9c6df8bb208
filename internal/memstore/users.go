package memstore

import (
	"context"
	"sort"

	"github.com/MikeMC777/plumbstore/internal/user"
)

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.users {
		if x.Email == u.Email {
			return user.ErrAlreadyExists
		}
	}
	now := r.s.tick()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.d.users[u.ID] = *u
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = user.NormalizeEmail(email)
	for _, u := range r.s.d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *Users) Update(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.d.users[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	for id, x := range r.s.d.users {
		if id != u.ID && x.Email == u.Email {
			return user.ErrAlreadyExists
		}
	}
	cur.Email = u.Email
	cur.FirstName, cur.LastName, cur.Phone = u.FirstName, u.LastName, u.Phone
	cur.Role, cur.PasswordHash = u.Role, u.PasswordHash
	cur.UpdatedAt = r.s.tick()
	r.s.d.users[u.ID] = cur
	*u = cur
	return nil
}

func (r *Users) CreateAddress(_ context.Context, a *user.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.users[a.UserID]; !ok {
		return user.ErrNotFound
	}
	a.CreatedAt = r.s.tick()
	r.s.d.addresses[a.ID] = *a
	return nil
}

func (r *Users) GetAddress(_ context.Context, id string) (*user.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.d.addresses[id]
	if !ok {
		return nil, user.ErrAddressNotFound
	}
	return &a, nil
}

func (r *Users) ListAddresses(_ context.Context, userID string) ([]user.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []user.Address{}
	for _, a := range r.s.d.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
