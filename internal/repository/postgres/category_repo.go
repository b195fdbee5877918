package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"artisanal-futures/internal/domain/category"
	xerrors "artisanal-futures/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `id, name, type, parent_id, created_at, updated_at`

type CategoryRepository struct {
	db *pgxpool.Pool
}

func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category. The caller assigns the id.
func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (id, name, type, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, c.ID, c.Name, c.Type, c.ParentID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories
		SET name = $1, parent_id = $2, updated_at = $3
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, c.Name, c.ParentID, time.Now(), c.ID).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*category.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindByName matches case-insensitively; collisions resolve to the earliest
// created row.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*category.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE lower(name) = lower($1)
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	return r.findOne(ctx, query, name)
}

func (r *CategoryRepository) FindTopLevelByName(ctx context.Context, name string, t category.Type) (*category.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE lower(name) = lower($1) AND type = $2 AND parent_id IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	return r.findOne(ctx, query, name, t)
}

// ListAll returns every category ordered by name, the flat input of the tree
// build.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]category.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name ASC, id ASC`
	return r.list(ctx, query)
}

func (r *CategoryRepository) ListChildren(ctx context.Context, parentID string) ([]category.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE parent_id = $1
		ORDER BY name ASC, id ASC
	`
	return r.list(ctx, query, parentID)
}

func (r *CategoryRepository) CountChildren(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count child categories: %w", err)
	}
	return count, nil
}

func (r *CategoryRepository) CountLinkedItems(ctx context.Context, id string) (int64, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM product_categories WHERE category_id = $1) +
			(SELECT COUNT(*) FROM service_categories WHERE category_id = $1)
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count linked items: %w", err)
	}
	return count, nil
}

// DisassociateItems removes both link tables' rows in one transaction.
func (r *CategoryRepository) DisassociateItems(ctx context.Context, id string) (int64, int64, error) {
	var products, services int64

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM product_categories WHERE category_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to unlink products: %w", err)
		}
		products = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM service_categories WHERE category_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to unlink services: %w", err)
		}
		services = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return products, services, nil
}

func (r *CategoryRepository) findOne(ctx context.Context, query string, args ...interface{}) (*category.Category, error) {
	var c category.Category
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.Name, &c.Type, &c.ParentID, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) list(ctx context.Context, query string, args ...interface{}) ([]category.Category, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []category.Category{}
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}
