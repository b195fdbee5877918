package postgres

import (
	"context"
	"errors"
	"fmt"

	"artisanal-futures/internal/domain/shop"
	xerrors "artisanal-futures/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shopColumns = `id, owner_id, shop_name, owner_name, bio, description, logo_photo,
		       cover_photo, website, phone, email, address, city, state, zip, country,
		       is_public, created_at, updated_at`

type ShopRepository struct {
	db *pgxpool.Pool
}

func NewShopRepository(db *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{db: db}
}

// Create inserts a shop. A unique violation on owner_id maps to ErrConflict.
func (r *ShopRepository) Create(ctx context.Context, s *shop.Shop) error {
	query := `
		INSERT INTO shops (
			id, owner_id, shop_name, owner_name, bio, description, logo_photo,
			cover_photo, website, phone, email, address, city, state, zip, country, is_public
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		s.ID, s.OwnerID, s.ShopName, s.OwnerName, s.Bio, s.Description, s.LogoPhoto,
		s.CoverPhoto, s.Website, s.Phone, s.Email, s.Address, s.City, s.State, s.Zip,
		s.Country, s.IsPublic,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.Conflict("owner already has a shop")
	}
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}

	return nil
}

func (r *ShopRepository) FindByID(ctx context.Context, id string) (*shop.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *ShopRepository) FindByOwner(ctx context.Context, ownerID string) (*shop.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE owner_id = $1 ORDER BY created_at ASC LIMIT 1`
	return r.findOne(ctx, query, ownerID)
}

func (r *ShopRepository) findOne(ctx context.Context, query string, args ...interface{}) (*shop.Shop, error) {
	var s shop.Shop
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.OwnerID, &s.ShopName, &s.OwnerName, &s.Bio, &s.Description, &s.LogoPhoto,
		&s.CoverPhoto, &s.Website, &s.Phone, &s.Email, &s.Address, &s.City, &s.State,
		&s.Zip, &s.Country, &s.IsPublic, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shop: %w", err)
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
