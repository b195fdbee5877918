package category

import "time"

type Type string

const (
	TypeProduct Type = "PRODUCT"
	TypeService Type = "SERVICE"
)

// Valid reports whether t is a known category type.
func (t Type) Valid() bool {
	return t == TypeProduct || t == TypeService
}

// Category is a node in the two-level navigation tree. Children is only
// populated by the tree query.
type Category struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Type      Type       `json:"type" db:"type"`
	ParentID  *string    `json:"parent_id,omitempty" db:"parent_id"`
	Children  []Category `json:"children,omitempty"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// IsTopLevel reports whether the category has no parent.
func (c *Category) IsTopLevel() bool {
	return c.ParentID == nil
}
