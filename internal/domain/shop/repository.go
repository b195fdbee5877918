package shop

import "context"

type Repository interface {
	Create(ctx context.Context, s *Shop) error
	FindByID(ctx context.Context, id string) (*Shop, error)
	FindByOwner(ctx context.Context, ownerID string) (*Shop, error)
}
