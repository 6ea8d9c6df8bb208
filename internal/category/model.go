package category

import "errors"

var (
	ErrNotFound    = errors.New("category not found")
	ErrInvalidTier = errors.New("category tier must be between 1 and 4")
	ErrInvalidType = errors.New("unknown category type")
)

// Tier is the fixed depth of a category: 1 primary .. 4 quaternary.
type Tier int

const (
	Primary Tier = iota + 1
	Secondary
	Tertiary
	Quaternary
)

func (t Tier) Valid() bool { return t >= Primary && t <= Quaternary }

func (t Tier) String() string {
	switch t {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Tertiary:
		return "tertiary"
	case Quaternary:
		return "quaternary"
	}
	return "invalid"
}

// Types are the top-level catalogues the storefront sells from.
var Types = []string{"plumbing", "heating"}

func ValidType(t string) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// Category ancestors are stored per tier; columns at or below the
// category's own tier are nil.
type Category struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Tier        Tier    `json:"tier"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	ImageKey    string  `json:"-"`
	ImageURL    string  `json:"image_url,omitempty"`
	Position    int     `json:"position"`
	PrimaryID   *string `json:"primary_id,omitempty"`
	SecondaryID *string `json:"secondary_id,omitempty"`
	TertiaryID  *string `json:"tertiary_id,omitempty"`
}

// Ancestors returns the ancestor ids from primary downwards.
func (c Category) Ancestors() []string {
	var out []string
	for _, p := range []*string{c.PrimaryID, c.SecondaryID, c.TertiaryID} {
		if p == nil {
			break
		}
		out = append(out, *p)
	}
	return out
}

// ParentID is the nearest ancestor id, empty for primary categories.
func (c Category) ParentID() string {
	a := c.Ancestors()
	if len(a) == 0 {
		return ""
	}
	return a[len(a)-1]
}

// Filter selects categories of one tier under a fixed ancestor chain.
type Filter struct {
	Type        string
	Tier        Tier
	PrimaryID   string
	SecondaryID string
	TertiaryID  string
	Slug        string
}

// FilterFor builds the filter for the children of the given ancestor chain.
func FilterFor(typ string, parents ...string) (Filter, error) {
	if !ValidType(typ) {
		return Filter{}, ErrInvalidType
	}
	tier := Tier(len(parents) + 1)
	if !tier.Valid() {
		return Filter{}, ErrInvalidTier
	}
	f := Filter{Type: typ, Tier: tier}
	for i, p := range parents {
		switch i {
		case 0:
			f.PrimaryID = p
		case 1:
			f.SecondaryID = p
		case 2:
			f.TertiaryID = p
		}
	}
	return f, nil
}

// Match reports whether c satisfies f. Empty ancestor ids in f must be
// empty on c as well, so a tier-2 filter never matches an orphan.
func (f Filter) Match(c Category) bool {
	if c.Type != f.Type || c.Tier != f.Tier {
		return false
	}
	if f.Slug != "" && c.Slug != f.Slug {
		return false
	}
	return eq(c.PrimaryID, f.PrimaryID) && eq(c.SecondaryID, f.SecondaryID) && eq(c.TertiaryID, f.TertiaryID)
}

func eq(p *string, s string) bool {
	if p == nil {
		return s == ""
	}
	return *p == s
}

// Page is a category landing page: where the shopper is and what is below.
type Page struct {
	Trail    []Category `json:"trail"`
	Current  Category   `json:"current"`
	Children []Category `json:"children"`
}

// Node is a category with its descendants, used for navigation menus.
type Node struct {
	Category
	Children []Node `json:"children,omitempty"`
}
