package category

import (
	"context"
	"time"

	"github.com/MikeMC777/plumbstore/internal/db"
)

type Repository interface {
	Create(ctx context.Context, c *Category) error
	// List returns the categories matching f, ordered by position then name.
	List(ctx context.Context, f Filter) ([]Category, error)
	// ListType returns every category of a type, all tiers.
	ListType(ctx context.Context, typ string) ([]Category, error)
}

type PGRepo struct{ db *db.Pool }

func NewPGRepo(pool *db.Pool) *PGRepo { return &PGRepo{db: pool} }

const cols = `id, type, tier, name, slug, description, image_key, position, primary_id, secondary_id, tertiary_id`

func (r *PGRepo) Create(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Q(ctx).Exec(ctx, `
		INSERT INTO categories (`+cols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, c.ID, c.Type, int(c.Tier), c.Name, c.Slug, c.Description, c.ImageKey, c.Position, c.PrimaryID, c.SecondaryID, c.TertiaryID)
	return err
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Category, error) {
	return r.query(ctx, `
		SELECT `+cols+` FROM categories
		WHERE type = $1 AND tier = $2
		  AND COALESCE(primary_id::text, '') = $3
		  AND COALESCE(secondary_id::text, '') = $4
		  AND COALESCE(tertiary_id::text, '') = $5
		  AND ($6 = '' OR slug = $6)
		ORDER BY position ASC, name ASC
	`, f.Type, int(f.Tier), f.PrimaryID, f.SecondaryID, f.TertiaryID, f.Slug)
}

func (r *PGRepo) ListType(ctx context.Context, typ string) ([]Category, error) {
	return r.query(ctx, `
		SELECT `+cols+` FROM categories
		WHERE type = $1
		ORDER BY tier ASC, position ASC, name ASC
	`, typ)
}

func (r *PGRepo) query(ctx context.Context, sql string, args ...any) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		var tier int
		if err := rows.Scan(&c.ID, &c.Type, &tier, &c.Name, &c.Slug, &c.Description, &c.ImageKey, &c.Position,
			&c.PrimaryID, &c.SecondaryID, &c.TertiaryID); err != nil {
			return nil, err
		}
		c.Tier = Tier(tier)
		out = append(out, c)
	}
	return out, rows.Err()
}
