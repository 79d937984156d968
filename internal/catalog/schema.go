package catalog

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type BasketRecord struct {
	ID              int64        `gorm:"primaryKey"`
	OwnerName       *string      `gorm:"size:64;index"`
	ReferenceNumber *string      `gorm:"size:32;index"`
	CreatedAt       time.Time    `gorm:"not null;index;autoCreateTime"`
	UpdatedAt       time.Time    `gorm:"not null;index;autoUpdateTime"`
	Items           []ItemRecord `gorm:"foreignKey:BasketID"`
}

func (BasketRecord) TableName() string { return "basket" }

type ProductRecord struct {
	ID          int64         `gorm:"primaryKey"`
	Name        string        `gorm:"size:64;not null;index"`
	Description string        `gorm:"type:text;not null;index"`
	Prices      []PriceRecord `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (ProductRecord) TableName() string { return "product" }

type ItemRecord struct {
	ID        int64         `gorm:"primaryKey"`
	BasketID  int64         `gorm:"column:basket;not null"`
	Amount    *int          `gorm:"column:amount"`
	ProductID *int64        `gorm:"column:product_id"`
	Product   ProductRecord `gorm:"foreignKey:ProductID"`
}

func (ItemRecord) TableName() string { return "item" }

type PriceRecord struct {
	ID        int64  `gorm:"primaryKey"`
	Amount    *int   `gorm:"column:amount"`
	ProductID int64  `gorm:"column:product;not null"`
	PriceType string `gorm:"column:price_type;size:16;index"`
}

func (PriceRecord) TableName() string { return "price" }

// Migrate creates or updates the four catalog tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&BasketRecord{}, &ProductRecord{}, &ItemRecord{}, &PriceRecord{})
}

func (r PriceRecord) toDomain() (Price, error) {
	t, err := ParsePriceType(r.PriceType)
	if err != nil {
		return Price{}, fmt.Errorf("price %d: %w", r.ID, err)
	}
	amount := 0
	if r.Amount != nil {
		amount = *r.Amount
	}
	return Price{ID: r.ID, Amount: amount, PriceType: t}, nil
}

func (r ProductRecord) toDomain() (Product, error) {
	prices := make([]Price, 0, len(r.Prices))
	for _, pr := range r.Prices {
		p, err := pr.toDomain()
		if err != nil {
			return Product{}, err
		}
		prices = append(prices, p)
	}
	return Product{ID: r.ID, Name: r.Name, Description: r.Description, Prices: prices}, nil
}

func productRecordFrom(p Product) ProductRecord {
	rec := ProductRecord{ID: p.ID, Name: p.Name, Description: p.Description}
	rec.Prices = make([]PriceRecord, 0, len(p.Prices))
	for _, pr := range p.Prices {
		amount := pr.Amount
		rec.Prices = append(rec.Prices, PriceRecord{ID: pr.ID, Amount: &amount, PriceType: string(pr.PriceType)})
	}
	return rec
}
