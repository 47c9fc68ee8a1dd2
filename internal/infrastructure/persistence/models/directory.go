package models

import (
	"github.com/mhpos/backend/internal/domain/invoicing/acl"
)

// CustomerModel is the persistence model for the customer directory.
// The invoicing engine only reads it; customer management lives in a
// separate system that shares the table.
type CustomerModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(200);not null"`
	Email  string `gorm:"type:varchar(200);index"`
	Phone  string `gorm:"type:varchar(50)"`
	Active bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToRef converts the persistence model to a read-only customer snapshot
func (m *CustomerModel) ToRef() *acl.CustomerRef {
	return &acl.CustomerRef{
		ID:     m.ID,
		Name:   m.Name,
		Email:  m.Email,
		Phone:  m.Phone,
		Active: m.Active,
	}
}

// ProductModel is the persistence model for the product catalog, read
// only from the invoicing side to validate line-item references.
type ProductModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(200);not null"`
	SKU    string `gorm:"type:varchar(50);uniqueIndex"`
	Active bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}
