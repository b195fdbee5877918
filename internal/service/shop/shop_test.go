package shop

import (
	"context"
	"testing"

	"artisanal-futures/internal/domain/shop"
	xerrors "artisanal-futures/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRepo struct {
	shops []shop.Shop
}

func (m *memRepo) Create(_ context.Context, s *shop.Shop) error {
	m.shops = append(m.shops, *s)
	return nil
}

func (m *memRepo) FindByID(_ context.Context, id string) (*shop.Shop, error) {
	for _, s := range m.shops {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (m *memRepo) FindByOwner(_ context.Context, ownerID string) (*shop.Shop, error) {
	for _, s := range m.shops {
		if s.OwnerID == ownerID {
			s := s
			return &s, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func TestCreateShop_OnePerOwner(t *testing.T) {
	repo := &memRepo{}
	svc := NewShopService(repo, zap.NewNop())
	ctx := context.Background()

	sh, err := svc.CreateShop(ctx, "user_1", &shop.CreateShopRequest{ShopName: " Loom Co-op ", OwnerName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Loom Co-op", sh.ShopName)
	assert.NotEmpty(t, sh.ID)

	_, err = svc.CreateShop(ctx, "user_1", &shop.CreateShopRequest{ShopName: "Second", OwnerName: "Ada"})
	assert.ErrorIs(t, err, xerrors.ErrConflict)
	assert.Len(t, repo.shops, 1)

	mine, err := svc.GetCurrentUserShop(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, sh.ID, mine.ID)

	_, err = svc.GetCurrentUserShop(ctx, "user_2")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestCreateShop_Validation(t *testing.T) {
	svc := NewShopService(&memRepo{}, zap.NewNop())

	_, err := svc.CreateShop(context.Background(), "", &shop.CreateShopRequest{ShopName: "x"})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)

	_, err = svc.CreateShop(context.Background(), "user_1", &shop.CreateShopRequest{ShopName: "  "})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestGetShop_PrivateVisibleToOwnerOnly(t *testing.T) {
	repo := &memRepo{shops: []shop.Shop{{ID: "s1", OwnerID: "owner", ShopName: "Hidden"}}}
	svc := NewShopService(repo, zap.NewNop())

	_, err := svc.GetShop(context.Background(), "s1", "someone")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	sh, err := svc.GetShop(context.Background(), "s1", "owner")
	require.NoError(t, err)
	assert.Equal(t, "Hidden", sh.ShopName)
}
