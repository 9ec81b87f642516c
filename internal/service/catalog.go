package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Images ImageStore
	Events Publisher
	Index  Indexer
	Search Searcher
}

type ProductInput struct {
	SKU        string
	Name       string
	CategoryID uint
	MRP        float64
	Discount   float64
	Quantity   int
	ImageURL   *string
	IsActive   *bool
}

type CategoryInput struct {
	Name     string
	IsActive *bool
}

// Upload is an image file sent along with a product form.
type Upload struct {
	Filename string
	Body     io.Reader
}

type SearchResult struct {
	Total    int64                `json:"total"`
	Products []models.ProductView `json:"products"`
}

func (in ProductInput) validate() error {
	var problems []string
	if strings.TrimSpace(in.SKU) == "" {
		problems = append(problems, "sku is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if in.CategoryID == 0 {
		problems = append(problems, "category_id is required")
	}
	if math.IsNaN(in.MRP) || math.IsInf(in.MRP, 0) || in.MRP < 0 {
		problems = append(problems, "mrp must be a non-negative number")
	}
	if math.IsNaN(in.Discount) || in.Discount < 0 || in.Discount > 100 {
		problems = append(problems, "discount must be between 0 and 100")
	}
	if in.Quantity < 0 {
		problems = append(problems, "quantity must be non-negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}

// storeError maps a failed write to the service taxonomy. A store that is
// unreachable or a cancelled request is an internal error; any other
// rejection by the store other than a missing row is the caller's fault.
func storeError(err error, what string) error {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return err
	case isInfraError(err):
		return fmt.Errorf("write %s: %w", what, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", ErrValidation, what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s references a missing category", ErrValidation, what)
	default:
		return fmt.Errorf("%w: %s rejected by store: %v", ErrValidation, what, err)
	}
}

// searchWindow is the deepest hit Elasticsearch pages to by default
// (index.max_result_window).
const searchWindow = 10000

func idKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func (s *CatalogService) ListProducts(ctx context.Context, query url.Values) ([]models.ProductView, error) {
	f, err := repo.ParseProductFilter(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.Repo.ListProducts(ctx, f)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.ProductView, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

// saveImage stores the upload, if any, and returns its URL.
func (s *CatalogService) saveImage(ctx context.Context, img *Upload) (*string, error) {
	if img == nil {
		return nil, nil
	}
	if s.Images == nil {
		return nil, errors.New("image store is not configured")
	}
	u, err := s.Images.Save(ctx, img.Filename, img.Body)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}
	return &u, nil
}

// discardImage removes an image whose row was never written.
func (s *CatalogService) discardImage(ctx context.Context, u *string) {
	if u == nil {
		return
	}
	bestEffort(ctx, "remove orphaned image", func(ctx context.Context) error {
		return s.Images.Remove(ctx, *u)
	})
}

func (s *CatalogService) afterProductWrite(ctx context.Context, eventType string, p *models.Product) {
	publish(ctx, s.Events, TopicProductEvents, idKey(p.ID), Event{
		Type:     eventType,
		EntityID: p.ID,
		Payload:  p,
	})
	if s.Index == nil {
		return
	}
	bestEffort(ctx, "index product", func(ctx context.Context) error {
		if !p.IsActive {
			return s.Index.RemoveProduct(ctx, p.ID)
		}
		return s.Index.IndexProduct(ctx, *p)
	})
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput, img *Upload) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	if err := in.validate(); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid input", "error", err)
		return nil, err
	}

	imageURL, err := s.saveImage(ctx, img)
	if err != nil {
		l.Warn("create_product_error", "reason", "cannot store image", "error", err)
		return nil, fmt.Errorf("store image: %w", err)
	}
	if imageURL == nil {
		imageURL = in.ImageURL
	}

	prod := models.Product{
		SKU:        strings.TrimSpace(in.SKU),
		Name:       strings.TrimSpace(in.Name),
		CategoryID: in.CategoryID,
		MRP:        in.MRP,
		Discount:   in.Discount,
		Quantity:   in.Quantity,
		ImageURL:   imageURL,
		IsActive:   in.IsActive == nil || *in.IsActive,
	}
	if err := s.Repo.CreateProduct(ctx, &prod); err != nil {
		if img != nil {
			s.discardImage(ctx, imageURL)
		}
		l.Warn("create_product_error", "status", 400, "reason", "store rejected product", "error", err)
		return nil, storeError(err, "product")
	}

	l.Info("create_product_success", "product_id", prod.ID)
	s.afterProductWrite(ctx, "product_created", &prod)
	return &prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput, img *Upload) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product", "product_id", id)

	if err := in.validate(); err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid input", "error", err)
		return nil, err
	}

	uploaded, err := s.saveImage(ctx, img)
	if err != nil {
		l.Warn("update_product_error", "reason", "cannot store image", "error", err)
		return nil, fmt.Errorf("store image: %w", err)
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, func(p *models.Product) error {
		p.SKU = strings.TrimSpace(in.SKU)
		p.Name = strings.TrimSpace(in.Name)
		p.CategoryID = in.CategoryID
		p.MRP = in.MRP
		p.Discount = in.Discount
		p.Quantity = in.Quantity
		switch {
		case uploaded != nil:
			p.ImageURL = uploaded
		case in.ImageURL != nil:
			p.ImageURL = in.ImageURL
		}
		if in.IsActive != nil {
			p.IsActive = *in.IsActive
		}
		return nil
	})
	if err != nil {
		s.discardImage(ctx, uploaded)
		err = storeError(err, "product")
		if errors.Is(err, ErrNotFound) {
			l.Warn("update_product_error", "status", 404, "reason", "product not found")
		} else {
			l.Warn("update_product_error", "status", 400, "reason", "store rejected product", "error", err)
		}
		return nil, err
	}

	l.Info("update_product_success")
	s.afterProductWrite(ctx, "product_updated", prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product", "product_id", id)

	if err := s.Repo.SoftDeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("delete_product_error", "status", 404, "reason", "product not found")
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		l.Error("delete_product_error", "status", 500, "reason", "cannot deactivate product", "error", err)
		return err
	}

	l.Info("delete_product_success")
	publish(ctx, s.Events, TopicProductEvents, idKey(id), Event{Type: "product_deleted", EntityID: id})
	if s.Index != nil {
		bestEffort(ctx, "unindex product", func(ctx context.Context) error {
			return s.Index.RemoveProduct(ctx, id)
		})
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_category")

	if err := in.validate(); err != nil {
		l.Warn("create_category_error", "status", 400, "reason", "invalid input", "error", err)
		return nil, err
	}

	cat := models.Category{
		Name:     strings.TrimSpace(in.Name),
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if err := s.Repo.CreateCategory(ctx, &cat); err != nil {
		l.Warn("create_category_error", "status", 400, "reason", "store rejected category", "error", err)
		return nil, storeError(err, "category")
	}

	l.Info("create_category_success", "category_id", cat.ID)
	publish(ctx, s.Events, TopicCategoryEvents, idKey(cat.ID), Event{Type: "category_created", EntityID: cat.ID, Payload: cat})
	return &cat, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_category", "category_id", id)

	if err := in.validate(); err != nil {
		l.Warn("update_category_error", "status", 400, "reason", "invalid input", "error", err)
		return nil, err
	}

	cat, err := s.Repo.UpdateCategory(ctx, id, func(c *models.Category) error {
		c.Name = strings.TrimSpace(in.Name)
		if in.IsActive != nil {
			c.IsActive = *in.IsActive
		}
		return nil
	})
	if err != nil {
		err = storeError(err, "category")
		if errors.Is(err, ErrNotFound) {
			l.Warn("update_category_error", "status", 404, "reason", "category not found")
		} else {
			l.Warn("update_category_error", "status", 400, "reason", "store rejected category", "error", err)
		}
		return nil, err
	}

	l.Info("update_category_success")
	publish(ctx, s.Events, TopicCategoryEvents, idKey(id), Event{Type: "category_updated", EntityID: id, Payload: cat})
	return cat, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_category", "category_id", id)

	if err := s.Repo.SoftDeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("delete_category_error", "status", 404, "reason", "category not found")
			return fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		l.Error("delete_category_error", "status", 500, "reason", "cannot deactivate category", "error", err)
		return err
	}

	l.Info("delete_category_success")
	publish(ctx, s.Events, TopicCategoryEvents, idKey(id), Event{Type: "category_deleted", EntityID: id})
	return nil
}

// SearchProducts runs a full-text query against the index and loads the hits
// from the store so prices and availability are current.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, page, size int) (*SearchResult, error) {
	if s.Search == nil {
		return nil, ErrSearchDisabled
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: q is required", ErrValidation)
	}

	from, limit := util.Calculate(page, size)
	if from+limit > searchWindow {
		return nil, fmt.Errorf("%w: page out of range, at most %d results can be paged", ErrValidation, searchWindow)
	}
	total, ids, err := s.Search.Search(ctx, q, from, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	items, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Total: total, Products: items}, nil
}
