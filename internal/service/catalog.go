package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/validation"
)

const relatedLimit = 4

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  search.Index
	Events events.Publisher
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	cat, err := s.Repo.GetCategory(ctx, id)
	return cat, translate(err, "category")
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	cat := models.Category{Name: req.Name, Description: req.Description}
	if err := s.Repo.CreateCategory(ctx, &cat); err != nil {
		return nil, translate(err, "category")
	}
	return &cat, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req transport.PatchCategoryRequest) (*models.Category, error) {
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	cat, err := s.Repo.UpdateCategory(ctx, id, req)
	return cat, translate(err, "category")
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	return translate(s.Repo.DeleteCategory(ctx, id), "category")
}

func (s *CatalogService) GetProducts(ctx context.Context, categoryID *uint, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, categoryID, offset, limit)
}

// GetProduct returns the product with up to four products from its category.
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*transport.ProductDetail, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, translate(err, "product")
	}
	related, err := s.Repo.RelatedProducts(ctx, p, relatedLimit)
	if err != nil {
		return nil, err
	}
	if related == nil {
		related = []models.Product{}
	}
	return &transport.ProductDetail{Product: *p, Related: related}, nil
}

// SearchProducts prefers the search index and falls back to the database when it is absent or failing.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("query is empty: %w", ErrValidation)
	}
	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "query", q, "error", err)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	prod, err := s.Repo.CreateProduct(ctx, &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		Size:        req.Size,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return nil, translate(err, "product")
	}

	s.reindex(ctx, *prod)
	publish(ctx, s.Events, events.TopicProducts, key(prod.ID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
		"price":     prod.Price.String(),
		"stock":     prod.Stock,
	})
	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id uint) (*models.Product, error) {
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if req.CategoryID != nil {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		rounded := req.Price.Round(2)
		req.Price = &rounded
	}

	prod, err := s.Repo.PatchProduct(ctx, req, id)
	if err != nil {
		return nil, translate(err, "product")
	}

	s.reindex(ctx, *prod)
	publish(ctx, s.Events, events.TopicProducts, key(prod.ID), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
		"price":     prod.Price.String(),
		"stock":     prod.Stock,
	})
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return translate(err, "product")
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_delete_error", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, key(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) requireCategory(ctx context.Context, id uint) error {
	ok, err := s.Repo.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("category %d does not exist: %w", id, ErrValidation)
	}
	return nil
}

func (s *CatalogService) reindex(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("search_index_error", "product_id", p.ID, "error", err)
	}
}

func key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
