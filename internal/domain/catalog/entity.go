package catalog

import (
	"time"

	"artisanal-futures/internal/domain/category"

	"github.com/lib/pq"
)

// Kind selects between the product and service catalogs, which share a
// shape but live in separate tables.
type Kind string

const (
	KindProduct Kind = "product"
	KindService Kind = "service"
)

// CategoryType is the category tree a catalog kind is filed under.
func (k Kind) CategoryType() category.Type {
	if k == KindService {
		return category.TypeService
	}
	return category.TypeProduct
}

// Item is a product or service listed by a shop.
type Item struct {
	ID                string         `json:"id" db:"id"`
	Kind              Kind           `json:"kind" db:"-"`
	Name              string         `json:"name" db:"name"`
	Description       *string        `json:"description,omitempty" db:"description"`
	Price             *float64       `json:"price,omitempty" db:"price"`
	Currency          *string        `json:"currency,omitempty" db:"currency"`
	ImageURL          *string        `json:"image_url,omitempty" db:"image_url"`
	ShopID            string         `json:"shop_id" db:"shop_id"`
	IsPublic          bool           `json:"is_public" db:"is_public"`
	AttributeTags     pq.StringArray `json:"attribute_tags" db:"attribute_tags"`
	MaterialTags      pq.StringArray `json:"material_tags" db:"material_tags"`
	EnvironmentalTags pq.StringArray `json:"environmental_tags" db:"environmental_tags"`
	AIGeneratedTags   pq.StringArray `json:"ai_generated_tags" db:"ai_generated_tags"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
}

// HasAllAttributes reports whether the item carries every listed attribute tag.
func (i *Item) HasAllAttributes(attrs []string) bool {
	have := make(map[string]struct{}, len(i.AttributeTags))
	for _, t := range i.AttributeTags {
		have[t] = struct{}{}
	}
	for _, a := range attrs {
		if _, ok := have[a]; !ok {
			return false
		}
	}
	return true
}
