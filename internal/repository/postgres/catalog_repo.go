package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"artisanal-futures/internal/domain/catalog"
	xerrors "artisanal-futures/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const itemColumns = `i.id, i.name, i.description, i.price, i.currency, i.image_url,
		       i.shop_id, i.is_public, i.attribute_tags, i.material_tags,
		       i.environmental_tags, i.ai_generated_tags, i.created_at, i.updated_at`

// CatalogRepository serves both products and services; they share a shape
// and differ only in table names.
type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

type catalogTables struct {
	items   string
	links   string
	itemKey string
}

func tablesFor(kind catalog.Kind) catalogTables {
	if kind == catalog.KindService {
		return catalogTables{items: "services", links: "service_categories", itemKey: "service_id"}
	}
	return catalogTables{items: "products", links: "product_categories", itemKey: "product_id"}
}

// List returns one page of public items and the total match count.
func (r *CatalogRepository) List(ctx context.Context, f *catalog.ItemFilter) ([]catalog.Item, int64, error) {
	t := tablesFor(f.Kind)

	conditions := []string{"i.is_public = TRUE"}
	args := []interface{}{}
	argPos := 1

	if len(f.CategoryIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s l WHERE l.%s = i.id AND l.category_id = ANY($%d))",
			t.links, t.itemKey, argPos,
		))
		args = append(args, pq.Array(f.CategoryIDs))
		argPos++
	}

	if f.ShopID != "" {
		conditions = append(conditions, fmt.Sprintf("i.shop_id = $%d", argPos))
		args = append(args, f.ShopID)
		argPos++
	}

	if f.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(i.name ILIKE $%d OR i.description ILIKE $%d)", argPos, argPos,
		))
		args = append(args, "%"+escapeLike(f.Search)+"%")
		argPos++
	}

	if len(f.Attributes) > 0 {
		conditions = append(conditions, fmt.Sprintf("i.attribute_tags @> $%d", argPos))
		args = append(args, pq.Array(f.Attributes))
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s i WHERE %s", t.items, whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", t.items, err)
	}

	sortOrder := "DESC"
	if f.Sort == catalog.SortAsc {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s i
		WHERE %s
		ORDER BY i.created_at %s, i.id %s
		LIMIT $%d OFFSET $%d
	`, itemColumns, t.items, whereClause, sortOrder, sortOrder, argPos, argPos+1)

	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", t.items, err)
	}
	defer rows.Close()

	items := []catalog.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan %s: %w", t.items, err)
		}
		item.Kind = f.Kind
		items = append(items, *item)
	}

	return items, total, rows.Err()
}

func (r *CatalogRepository) FindByID(ctx context.Context, kind catalog.Kind, id string) (*catalog.Item, error) {
	t := tablesFor(kind)
	query := fmt.Sprintf(`SELECT %s FROM %s i WHERE i.id = $1`, itemColumns, t.items)

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	item.Kind = kind
	return item, nil
}

func scanItem(row pgx.Row) (*catalog.Item, error) {
	var i catalog.Item
	err := row.Scan(
		&i.ID, &i.Name, &i.Description, &i.Price, &i.Currency, &i.ImageURL,
		&i.ShopID, &i.IsPublic, &i.AttributeTags, &i.MaterialTags,
		&i.EnvironmentalTags, &i.AIGeneratedTags, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// escapeLike quotes the ILIKE wildcards so search terms match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
