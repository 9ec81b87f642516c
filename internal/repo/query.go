package repo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

var ErrInvalidFilter = errors.New("invalid filter")

const (
	effectivePriceSQL = "(p.mrp - (p.mrp * p.discount / 100))"
	productColumns    = "p.*, c.name AS category_name, " + effectivePriceSQL + " AS effective_price"
)

// sortColumns maps the accepted sortBy values to product columns. "price" is
// handled separately because it sorts on the computed effective price.
var sortColumns = map[string]string{
	"id":       "id",
	"name":     "name",
	"mrp":      "mrp",
	"quantity": "quantity",
}

const sortByPrice = "price"

type ProductFilter struct {
	CategoryID *uint
	MinPrice   *float64
	MaxPrice   *float64
	SortBy     string
	Desc       bool
	Page       int
	Size       int
}

// Paginated is false when neither page nor size was given, which asks for
// the full listing.
func (f ProductFilter) Paginated() bool {
	return f.Page > 0 || f.Size > 0
}

// ParseProductFilter reads category, minPrice, maxPrice, sortBy, order, page
// and size from untrusted query parameters.
func ParseProductFilter(q url.Values) (ProductFilter, error) {
	var f ProductFilter

	if raw := strings.TrimSpace(q.Get("category")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return ProductFilter{}, fmt.Errorf("%w: category must be a positive integer", ErrInvalidFilter)
		}
		cid := uint(id)
		f.CategoryID = &cid
	}

	var err error
	if f.MinPrice, err = parsePrice(q, "minPrice"); err != nil {
		return ProductFilter{}, err
	}
	if f.MaxPrice, err = parsePrice(q, "maxPrice"); err != nil {
		return ProductFilter{}, err
	}

	if sortBy := strings.TrimSpace(q.Get("sortBy")); sortBy != "" {
		if _, ok := sortColumns[sortBy]; !ok && sortBy != sortByPrice {
			return ProductFilter{}, fmt.Errorf("%w: unsupported sortBy %q", ErrInvalidFilter, sortBy)
		}
		f.SortBy = sortBy
	}

	switch strings.ToLower(strings.TrimSpace(q.Get("order"))) {
	case "", "asc":
	case "desc":
		f.Desc = true
	default:
		return ProductFilter{}, fmt.Errorf("%w: order must be asc or desc", ErrInvalidFilter)
	}

	if f.Page, err = parsePositive(q, "page"); err != nil {
		return ProductFilter{}, err
	}
	if f.Size, err = parsePositive(q, "size"); err != nil {
		return ProductFilter{}, err
	}

	return f, nil
}

func parsePrice(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidFilter, key)
	}
	return &v, nil
}

func parsePositive(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidFilter, key)
	}
	return v, nil
}

// activeProducts is the shared base of every catalog read: active products
// joined with their category name and the computed effective price.
func (r *GormRepo) activeProducts(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("products p").
		Select(productColumns).
		Joins("JOIN categories c ON p.category_id = c.id").
		Where("p.is_active = ?", true)
}

func (r *GormRepo) buildProductQuery(ctx context.Context, f ProductFilter) *gorm.DB {
	q := r.activeProducts(ctx)

	if f.CategoryID != nil {
		q = q.Where("p.category_id = ?", *f.CategoryID)
	}
	if f.MinPrice != nil {
		q = q.Where(effectivePriceSQL+" >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where(effectivePriceSQL+" <= ?", *f.MaxPrice)
	}

	switch {
	case f.SortBy == sortByPrice:
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: effectivePriceSQL, Raw: true}, Desc: f.Desc})
	case f.SortBy != "":
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Table: "p", Name: sortColumns[f.SortBy]}, Desc: f.Desc})
	}
	if f.SortBy != "id" {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Table: "p", Name: "id"}, Desc: f.SortBy == "" && f.Desc})
	}

	if f.Paginated() {
		offset, limit := util.Calculate(f.Page, f.Size)
		q = q.Offset(offset).Limit(limit)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.ProductView, error) {
	items := make([]models.ProductView, 0)
	if err := r.buildProductQuery(ctx, f).Scan(&items).Error; err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.ProductView{}
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.ProductView, error) {
	var item models.ProductView
	if err := r.activeProducts(ctx).Where("p.id = ?", id).Take(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ProductsByIDs returns the active products among ids in the order given.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uint) ([]models.ProductView, error) {
	out := make([]models.ProductView, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.ProductView
	if err := r.activeProducts(ctx).Where("p.id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.ProductView, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}
