package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/shared"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, productRepo catalog.ProductRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// Create creates a category, optionally under a parent in the same store
func (s *CategoryService) Create(ctx context.Context, storeID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = shared.Slugify(req.Name)
	}
	exists, err := s.categoryRepo.ExistsBySlug(ctx, storeID, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this slug already exists")
	}

	category, err := catalog.NewCategory(storeID, req.Name, slug, req.Description)
	if err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		parent, err := s.findParent(ctx, storeID, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if err := category.SetParent(parent); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// GetByID retrieves a category
func (s *CategoryService) GetByID(ctx context.Context, storeID, categoryID uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForStore(ctx, storeID, categoryID)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// List returns every category of a store
func (s *CategoryService) List(ctx context.Context, storeID uuid.UUID) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAllForStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = ToCategoryResponse(c)
	}
	return out, nil
}

// Update changes a category's name, description and parent
func (s *CategoryService) Update(ctx context.Context, storeID, categoryID uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForStore(ctx, storeID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, req.Description); err != nil {
		return nil, err
	}

	var parent *catalog.Category
	if req.ParentID != nil {
		if parent, err = s.findParent(ctx, storeID, *req.ParentID); err != nil {
			return nil, err
		}
		if err := s.rejectCycle(ctx, storeID, category.ID, parent); err != nil {
			return nil, err
		}
	}
	if err := category.SetParent(parent); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// Delete removes a category. Categories with children or products are kept.
func (s *CategoryService) Delete(ctx context.Context, storeID, categoryID uuid.UUID) error {
	if _, err := s.categoryRepo.FindByIDForStore(ctx, storeID, categoryID); err != nil {
		return err
	}
	hasChildren, err := s.categoryRepo.HasChildren(ctx, storeID, categoryID)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewDomainError("HAS_CHILDREN", "Category has child categories")
	}
	products, err := s.productRepo.CountByCategory(ctx, storeID, categoryID)
	if err != nil {
		return err
	}
	if products > 0 {
		return shared.NewDomainError("HAS_PRODUCTS", "Category still has products")
	}
	return s.categoryRepo.DeleteForStore(ctx, storeID, categoryID)
}

func (s *CategoryService) findParent(ctx context.Context, storeID, parentID uuid.UUID) (*catalog.Category, error) {
	parent, err := s.categoryRepo.FindByIDForStore(ctx, storeID, parentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
		}
		return nil, err
	}
	return parent, nil
}

// rejectCycle walks up from parent and fails if it reaches the category itself
func (s *CategoryService) rejectCycle(ctx context.Context, storeID, categoryID uuid.UUID, parent *catalog.Category) error {
	seen := map[uuid.UUID]bool{}
	for cur := parent; cur != nil; {
		if cur.ID == categoryID {
			return shared.NewDomainError("INVALID_PARENT", "Category cannot be moved under its own descendant")
		}
		if cur.ParentID == nil || seen[cur.ID] {
			return nil
		}
		seen[cur.ID] = true
		next, err := s.categoryRepo.FindByIDForStore(ctx, storeID, *cur.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		cur = next
	}
	return nil
}
