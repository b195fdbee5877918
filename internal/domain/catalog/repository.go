package catalog

import "context"

type Repository interface {
	// List returns one page of public items matching the filter and the total
	// number of matches.
	List(ctx context.Context, f *ItemFilter) ([]Item, int64, error)
	FindByID(ctx context.Context, kind Kind, id string) (*Item, error)
}
