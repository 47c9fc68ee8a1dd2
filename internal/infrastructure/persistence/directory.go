package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/invoicing/acl"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/mhpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerDirectory implements acl.CustomerDirectory against the
// shared customers table
type GormCustomerDirectory struct {
	db *gorm.DB
}

// NewGormCustomerDirectory creates a new GormCustomerDirectory
func NewGormCustomerDirectory(db *gorm.DB) *GormCustomerDirectory {
	return &GormCustomerDirectory{db: db}
}

// FindCustomer looks up a customer by id
func (d *GormCustomerDirectory) FindCustomer(ctx context.Context, id uuid.UUID) (*acl.CustomerRef, error) {
	var model models.CustomerModel
	if err := d.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToRef(), nil
}

// GormProductCatalog implements acl.ProductCatalog against the shared
// products table
type GormProductCatalog struct {
	db *gorm.DB
}

// NewGormProductCatalog creates a new GormProductCatalog
func NewGormProductCatalog(db *gorm.DB) *GormProductCatalog {
	return &GormProductCatalog{db: db}
}

// ProductExists reports whether an active product with the id exists
func (c *GormProductCatalog) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND active = ?", id, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
