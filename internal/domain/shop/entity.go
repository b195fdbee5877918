package shop

import "time"

// Shop is a worker-owned storefront. Each owner has at most one.
type Shop struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	ShopName    string    `json:"shop_name" db:"shop_name"`
	OwnerName   string    `json:"owner_name" db:"owner_name"`
	Bio         *string   `json:"bio,omitempty" db:"bio"`
	Description *string   `json:"description,omitempty" db:"description"`
	LogoPhoto   *string   `json:"logo_photo,omitempty" db:"logo_photo"`
	CoverPhoto  *string   `json:"cover_photo,omitempty" db:"cover_photo"`
	Website     *string   `json:"website,omitempty" db:"website"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	Email       *string   `json:"email,omitempty" db:"email"`
	Address     *string   `json:"address,omitempty" db:"address"`
	City        *string   `json:"city,omitempty" db:"city"`
	State       *string   `json:"state,omitempty" db:"state"`
	Zip         *string   `json:"zip,omitempty" db:"zip"`
	Country     *string   `json:"country,omitempty" db:"country"`
	IsPublic    bool      `json:"is_public" db:"is_public"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
