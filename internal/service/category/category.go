package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"artisanal-futures/internal/domain/category"
	xerrors "artisanal-futures/internal/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryService struct {
	repo   category.Repository
	logger *zap.Logger
}

func NewCategoryService(repo category.Repository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		repo:   repo,
		logger: logger,
	}
}

// GetNavigationTree returns every top-level category, optionally of one type,
// with its children attached. Both levels are ordered by name.
func (s *CategoryService) GetNavigationTree(ctx context.Context, t *category.Type) ([]category.Category, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return BuildTree(all, t), nil
}

// BuildTree groups a flat, name-ordered category list into top-level nodes
// with their direct children.
func BuildTree(all []category.Category, t *category.Type) []category.Category {
	children := make(map[string][]category.Category)
	for _, c := range all {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	tree := []category.Category{}
	for _, c := range all {
		if c.ParentID != nil {
			continue
		}
		if t != nil && c.Type != *t {
			continue
		}
		c.Children = children[c.ID]
		if c.Children == nil {
			c.Children = []category.Category{}
		}
		tree = append(tree, c)
	}

	return tree
}

// GetBySlug resolves a category by case-insensitive name.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*category.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, xerrors.ErrNotFound
	}

	c, err := s.repo.FindByName(ctx, slug)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// CreateCategory adds a category. A parent must be top-level and of the same
// type.
func (s *CategoryService) CreateCategory(ctx context.Context, req *category.CreateCategoryRequest) (*category.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, xerrors.Invalid("name is required")
	}
	if !req.Type.Valid() {
		return nil, xerrors.Invalid("unknown category type %q", req.Type)
	}

	c := &category.Category{
		ID:   uuid.NewString(),
		Name: name,
		Type: req.Type,
	}

	if req.ParentID != nil && *req.ParentID != "" {
		if err := s.validateParent(ctx, c, *req.ParentID); err != nil {
			return nil, err
		}
		c.ParentID = req.ParentID
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create category", zap.Error(err))
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("category created",
		zap.String("category_id", c.ID),
		zap.String("name", c.Name),
		zap.String("type", string(c.Type)),
	)

	return c, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id string, req *category.UpdateCategoryRequest) (*category.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, xerrors.Invalid("name must not be empty")
		}
		c.Name = name
	}

	switch {
	case req.ClearParent:
		c.ParentID = nil
	case req.ParentID != nil && *req.ParentID != "":
		children, err := s.repo.CountChildren(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count children: %w", err)
		}
		if children > 0 {
			return nil, xerrors.Invalid("category with children cannot become a subcategory")
		}
		if err := s.validateParent(ctx, c, *req.ParentID); err != nil {
			return nil, err
		}
		c.ParentID = req.ParentID
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info("category updated", zap.String("category_id", c.ID))

	return c, nil
}

// DeleteCategory refuses while children or linked items remain.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count children: %w", err)
	}
	if children > 0 {
		return xerrors.Conflict("category has %d subcategories", children)
	}

	linked, err := s.repo.CountLinkedItems(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count linked items: %w", err)
	}
	if linked > 0 {
		return xerrors.Conflict("category is linked to %d products or services", linked)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("category deleted", zap.String("category_id", id))
	return nil
}

// DisassociateProducts unlinks every product and service from a category.
func (s *CategoryService) DisassociateProducts(ctx context.Context, id string) (*category.DisassociateResult, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	products, services, err := s.repo.DisassociateItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to disassociate category: %w", err)
	}

	s.logger.Info("category disassociated",
		zap.String("category_id", id),
		zap.Int64("products", products),
		zap.Int64("services", services),
	)

	return &category.DisassociateResult{
		CategoryID:      id,
		ProductsRemoved: products,
		ServicesRemoved: services,
	}, nil
}

func (s *CategoryService) validateParent(ctx context.Context, c *category.Category, parentID string) error {
	if parentID == c.ID {
		return xerrors.Invalid("category cannot be its own parent")
	}

	parent, err := s.repo.FindByID(ctx, parentID)
	if errors.Is(err, xerrors.ErrNotFound) {
		return xerrors.Invalid("parent category %s does not exist", parentID)
	}
	if err != nil {
		return fmt.Errorf("failed to load parent category: %w", err)
	}

	if !parent.IsTopLevel() {
		return xerrors.Invalid("parent category %s is itself a subcategory", parentID)
	}
	if parent.Type != c.Type {
		return xerrors.Invalid("parent category type %s does not match %s", parent.Type, c.Type)
	}

	return nil
}
