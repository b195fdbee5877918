package category

import "context"

type Repository interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error

	FindByID(ctx context.Context, id string) (*Category, error)
	// FindByName matches name case-insensitively and returns the earliest
	// created category on collision.
	FindByName(ctx context.Context, name string) (*Category, error)
	// FindTopLevelByName is FindByName restricted to parent-less categories
	// of one type.
	FindTopLevelByName(ctx context.Context, name string, t Type) (*Category, error)
	ListAll(ctx context.Context) ([]Category, error)
	ListChildren(ctx context.Context, parentID string) ([]Category, error)

	CountChildren(ctx context.Context, id string) (int64, error)
	// CountLinkedItems counts products and services linked to the category.
	CountLinkedItems(ctx context.Context, id string) (int64, error)
	// DisassociateItems unlinks every product and service from the category.
	DisassociateItems(ctx context.Context, id string) (products int64, services int64, err error)
}
