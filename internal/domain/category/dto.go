package category

type CreateCategoryRequest struct {
	Name     string  `json:"name" binding:"required,max=120"`
	Type     Type    `json:"type" binding:"required,oneof=PRODUCT SERVICE"`
	ParentID *string `json:"parent_id"`
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=120"`
	ParentID *string `json:"parent_id"`
	// ClearParent promotes the category to the top level.
	ClearParent bool `json:"clear_parent"`
}

type TreeFilters struct {
	Type Type `form:"type" binding:"omitempty,oneof=PRODUCT SERVICE"`
}

type DisassociateResult struct {
	CategoryID      string `json:"category_id"`
	ProductsRemoved int64  `json:"products_removed"`
	ServicesRemoved int64  `json:"services_removed"`
}
