package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

type CatalogService struct {
	products   ports.ProductRepository
	categories ports.CategoryRepository
	now        func() time.Time
}

func NewCatalogService(products ports.ProductRepository, categories ports.CategoryRepository) *CatalogService {
	return &CatalogService{products: products, categories: categories, now: time.Now}
}

// StorefrontQuery is what a shopper can filter the product listing by.
type StorefrontQuery struct {
	CategorySlug string
	Brand        string
	Query        string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Sort         string
	Page         entity.Page
}

// ListProducts lists active, directly purchasable or configurable products.
func (s *CatalogService) ListProducts(ctx context.Context, q StorefrontQuery) (entity.PageResult[entity.Product], error) {
	active := true
	filter := entity.ProductFilter{
		Brand:           q.Brand,
		Query:           q.Query,
		MinPrice:        q.MinPrice,
		MaxPrice:        q.MaxPrice,
		ExcludeVariants: true,
		Active:          &active,
		Sort:            q.Sort,
		Page:            q.Page,
	}
	if q.CategorySlug != "" {
		cat, err := s.categories.GetCategoryBySlug(ctx, q.CategorySlug)
		if err != nil {
			return entity.PageResult[entity.Product]{}, err
		}
		if !cat.Active {
			return entity.PageResult[entity.Product]{}, fmt.Errorf("category %s: %w", q.CategorySlug, entity.ErrNotFound)
		}
		filter.CategoryID = cat.ID
	}
	return s.products.ListProducts(ctx, filter)
}

// ProductDetail returns an active product by slug; configurable products come
// with their active variants.
func (s *CatalogService) ProductDetail(ctx context.Context, slug string) (*entity.Product, error) {
	p, err := s.products.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, fmt.Errorf("product %s: %w", slug, entity.ErrNotFound)
	}
	if p.Type == entity.ProductConfigurable {
		variants, err := s.products.ListVariants(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, v := range variants {
			if v.Active {
				p.Variants = append(p.Variants, v)
			}
		}
	}
	return p, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, activeOnly bool) ([]entity.Category, error) {
	return s.categories.ListCategories(ctx, activeOnly)
}

// --- back-office ---

type ProductInput struct {
	SKU           string
	Name          string
	Slug          string
	Description   string
	Brand         string
	Price         decimal.Decimal
	StockQuantity int
	CategoryID    string
	Type          entity.ProductType
	ParentID      string
	Active        bool
}

func (s *CatalogService) AdminListProducts(ctx context.Context, f entity.ProductFilter) (entity.PageResult[entity.Product], error) {
	return s.products.ListProducts(ctx, f)
}

func (s *CatalogService) AdminGetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Type == entity.ProductConfigurable {
		if p.Variants, err = s.products.ListVariants(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*entity.Product, error) {
	if err := s.checkProductRefs(ctx, "", in); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p := &entity.Product{ID: uuid.NewString(), CreatedAt: now}
	applyProductInput(p, in, now)
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "product created", "product_id", p.ID, "sku", p.SKU)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*entity.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkProductRefs(ctx, id, in); err != nil {
		return nil, err
	}
	if p.Type == entity.ProductConfigurable && in.Type != entity.ProductConfigurable {
		variants, err := s.products.ListVariants(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(variants) > 0 {
			return nil, entity.NewValidationError("type", "a configurable product with variants cannot change its type")
		}
	}
	applyProductInput(p, in, s.now().UTC())
	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

// checkProductRefs validates the references a product input makes.
func (s *CatalogService) checkProductRefs(ctx context.Context, selfID string, in ProductInput) error {
	verr := &entity.ValidationError{Fields: map[string]string{}}

	if _, err := s.categories.GetCategory(ctx, in.CategoryID); err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			return err
		}
		verr.Fields["category_id"] = "The selected category does not exist."
	}

	switch {
	case in.Type == entity.ProductVariant && in.ParentID == "":
		verr.Fields["parent_id"] = "A variant needs a configurable parent product."
	case in.Type != entity.ProductVariant && in.ParentID != "":
		verr.Fields["parent_id"] = "Only variants can have a parent product."
	case in.ParentID != "" && in.ParentID == selfID:
		verr.Fields["parent_id"] = "A product cannot be its own parent."
	case in.ParentID != "":
		parent, err := s.products.GetProduct(ctx, in.ParentID)
		switch {
		case errors.Is(err, entity.ErrNotFound):
			verr.Fields["parent_id"] = "The selected parent product does not exist."
		case err != nil:
			return err
		case parent.Type != entity.ProductConfigurable:
			verr.Fields["parent_id"] = "The parent product must be configurable."
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func applyProductInput(p *entity.Product, in ProductInput, now time.Time) {
	p.SKU = in.SKU
	p.Name = in.Name
	p.Slug = in.Slug
	p.Description = in.Description
	p.Brand = in.Brand
	p.Price = in.Price.Round(2)
	p.StockQuantity = in.StockQuantity
	p.CategoryID = in.CategoryID
	p.Type = in.Type
	p.ParentID = in.ParentID
	p.Active = in.Active
	p.UpdatedAt = now
}

type CategoryInput struct {
	Name      string
	Slug      string
	ParentID  string
	Active    bool
	SortOrder int
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	return s.categories.GetCategory(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*entity.Category, error) {
	if err := s.checkCategoryParent(ctx, "", in.ParentID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c := &entity.Category{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Slug:      in.Slug,
		ParentID:  in.ParentID,
		Active:    in.Active,
		SortOrder: in.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.categories.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*entity.Category, error) {
	c, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategoryParent(ctx, id, in.ParentID); err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.Slug = in.Slug
	c.ParentID = in.ParentID
	c.Active = in.Active
	c.SortOrder = in.SortOrder
	c.UpdatedAt = s.now().UTC()
	if err := s.categories.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory fails with ErrConflict while products or subcategories
// still reference the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.DeleteCategory(ctx, id)
}

func (s *CatalogService) checkCategoryParent(ctx context.Context, selfID, parentID string) error {
	if parentID == "" {
		return nil
	}
	if parentID == selfID {
		return entity.NewValidationError("parent_id", "A category cannot be its own parent.")
	}
	if _, err := s.categories.GetCategory(ctx, parentID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.NewValidationError("parent_id", "The selected parent category does not exist.")
		}
		return err
	}
	return nil
}
