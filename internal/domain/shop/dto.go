package shop

type CreateShopRequest struct {
	ShopName    string  `json:"shop_name" binding:"required,max=255"`
	OwnerName   string  `json:"owner_name" binding:"required,max=255"`
	Bio         *string `json:"bio"`
	Description *string `json:"description"`
	LogoPhoto   *string `json:"logo_photo" binding:"omitempty,url"`
	CoverPhoto  *string `json:"cover_photo" binding:"omitempty,url"`
	Website     *string `json:"website" binding:"omitempty,url"`
	Phone       *string `json:"phone" binding:"omitempty,max=32"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Zip         *string `json:"zip"`
	Country     *string `json:"country"`
	IsPublic    bool    `json:"is_public"`
}
