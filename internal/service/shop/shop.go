package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"artisanal-futures/internal/domain/shop"
	xerrors "artisanal-futures/internal/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ShopService struct {
	repo   shop.Repository
	logger *zap.Logger
}

func NewShopService(repo shop.Repository, logger *zap.Logger) *ShopService {
	return &ShopService{
		repo:   repo,
		logger: logger,
	}
}

// CreateShop creates the owner's shop. An owner has at most one.
func (s *ShopService) CreateShop(ctx context.Context, ownerID string, req *shop.CreateShopRequest) (*shop.Shop, error) {
	if ownerID == "" {
		return nil, xerrors.ErrUnauthorized
	}

	existing, err := s.GetCurrentUserShop(ctx, ownerID)
	if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing shop: %w", err)
	}
	if existing != nil {
		return nil, xerrors.Conflict("owner already has shop %s", existing.ID)
	}

	name := strings.TrimSpace(req.ShopName)
	if name == "" {
		return nil, xerrors.Invalid("shop_name is required")
	}

	sh := &shop.Shop{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		ShopName:    name,
		OwnerName:   strings.TrimSpace(req.OwnerName),
		Bio:         req.Bio,
		Description: req.Description,
		LogoPhoto:   req.LogoPhoto,
		CoverPhoto:  req.CoverPhoto,
		Website:     req.Website,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Zip:         req.Zip,
		Country:     req.Country,
		IsPublic:    req.IsPublic,
	}

	if err := s.repo.Create(ctx, sh); err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create shop", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}

	s.logger.Info("shop created",
		zap.String("shop_id", sh.ID),
		zap.String("owner_id", ownerID),
	)

	return sh, nil
}

// GetCurrentUserShop returns the owner's shop or ErrNotFound.
func (s *ShopService) GetCurrentUserShop(ctx context.Context, ownerID string) (*shop.Shop, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}

// GetShop returns a public shop, or any shop to its owner.
func (s *ShopService) GetShop(ctx context.Context, id, viewerID string) (*shop.Shop, error) {
	sh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sh.IsPublic && sh.OwnerID != viewerID {
		return nil, xerrors.ErrNotFound
	}
	return sh, nil
}
