package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices are rendered as JSON numbers (9.99), not strings ("9.99").
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock       int             `json:"stock" gorm:"type:integer;not null"`
	ImageURL    string          `json:"image_url" gorm:"column:image_url;type:varchar(255);not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName pins the table name used by migrations and queries.
func (Product) TableName() string {
	return "products"
}

// ProductInput is the client-supplied body for create and update requests.
// Values stay loosely typed until validation normalizes them, so that numeric
// strings such as "9.99" are accepted for price and stock.
type ProductInput struct {
	Name        interface{} `json:"name"`
	Description interface{} `json:"description"`
	Price       interface{} `json:"price"`
	Stock       interface{} `json:"stock"`
}

// ProductDraft holds validated, normalized draft fields.
type ProductDraft struct {
	Name        string
	Description string
	Price       decimal.Decimal // rounded to 2 fractional digits
	Stock       int
}

// Apply copies the mutable fields of the draft onto p.
// ID, ImageURL and timestamps are left untouched.
func (d ProductDraft) Apply(p *Product) {
	p.Name = d.Name
	p.Description = d.Description
	p.Price = d.Price
	p.Stock = d.Stock
}
