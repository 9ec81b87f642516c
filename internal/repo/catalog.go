package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	active := prod.IsActive
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(prod).Error; err != nil {
			return err
		}
		return keepInactive(tx, &models.Product{}, prod.ID, active)
	})
	if err != nil {
		return err
	}
	prod.IsActive = active
	return nil
}

// UpdateProduct loads the product, lets apply rewrite it and saves every
// column, all inside one transaction. The returned row is re-read after the
// write.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, apply func(*models.Product) error) (*models.Product, error) {
	var out models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prod models.Product
		if err := tx.First(&prod, id).Error; err != nil {
			return err
		}
		if err := apply(&prod); err != nil {
			return err
		}
		prod.ID = id
		if err := tx.Select("*").Omit("Category").Updates(&prod).Error; err != nil {
			return err
		}
		return tx.First(&out, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormRepo) SoftDeleteProduct(ctx context.Context, id uint) error {
	return r.softDelete(ctx, &models.Product{}, id)
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	items := make([]models.Category, 0)
	if err := r.DB.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	active := cat.IsActive
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cat).Error; err != nil {
			return err
		}
		return keepInactive(tx, &models.Category{}, cat.ID, active)
	})
	if err != nil {
		return err
	}
	cat.IsActive = active
	return nil
}

// keepInactive undoes the column default on insert: gorm writes the
// is_active default instead of a false zero value.
func keepInactive(tx *gorm.DB, model any, id uint, active bool) error {
	if active {
		return nil
	}
	return tx.Model(model).Where("id = ?", id).Update("is_active", false).Error
}

func (r *GormRepo) UpdateCategory(ctx context.Context, id uint, apply func(*models.Category) error) (*models.Category, error) {
	var out models.Category
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat models.Category
		if err := tx.First(&cat, id).Error; err != nil {
			return err
		}
		if err := apply(&cat); err != nil {
			return err
		}
		cat.ID = id
		if err := tx.Select("*").Updates(&cat).Error; err != nil {
			return err
		}
		return tx.First(&out, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormRepo) SoftDeleteCategory(ctx context.Context, id uint) error {
	return r.softDelete(ctx, &models.Category{}, id)
}

// softDelete flips is_active off. Repeating it on an already inactive row is
// not an error; an unknown id is gorm.ErrRecordNotFound.
func (r *GormRepo) softDelete(ctx context.Context, model any, id uint) error {
	db := r.DB.WithContext(ctx)
	res := db.Model(model).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when the value did not change.
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
