package catalog

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"gorm.io/gorm"
)

// Repo is the only place that issues catalog queries. One gorm session is
// opened per call and transactions always end in commit or rollback.
type Repo struct{ DB *gorm.DB }

// page size untuk pencarian substring
const searchBatchSize = 50

func pricesByID(db *gorm.DB) *gorm.DB { return db.Order("id") }

func (r *Repo) ListProducts(ctx context.Context, orderByName bool) ([]Product, error) {
	q := r.DB.WithContext(ctx).Preload("Prices", pricesByID)
	if orderByName {
		q = q.Order("name").Order("id")
	} else {
		q = q.Order("id")
	}

	var recs []ProductRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toProducts(recs)
}

// AddProduct inserts the product and its prices in one transaction and writes
// the assigned ids back into p.
func (r *Repo) AddProduct(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	rec := productRecordFrom(*p)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("add product %q: %w", p.Name, err)
	}

	p.ID = rec.ID
	for i := range p.Prices {
		p.Prices[i].ID = rec.Prices[i].ID
	}
	return nil
}

// SearchProductByName returns the exact match that sorts first by name, id.
func (r *Repo) SearchProductByName(ctx context.Context, name string) (Product, error) {
	var recs []ProductRecord
	err := r.DB.WithContext(ctx).
		Preload("Prices", pricesByID).
		Where("name = ?", name).
		Order("name").Order("id").
		Limit(1).
		Find(&recs).Error
	if err != nil {
		return Product{}, fmt.Errorf("search product %q: %w", name, err)
	}
	if len(recs) == 0 {
		return Product{}, fmt.Errorf("%w: name %q", ErrProductNotFound, name)
	}
	return recs[0].toDomain()
}

// SearchProductsBySubstring lazily yields products whose name contains
// substring (case-sensitive), ordered by name. Every range over the returned
// sequence runs the query again, in pages of searchBatchSize rows.
func (r *Repo) SearchProductsBySubstring(ctx context.Context, substring string) iter.Seq2[Product, error] {
	return func(yield func(Product, error) bool) {
		cond := containsCond(r.DB)
		for offset := 0; ; offset += searchBatchSize {
			var recs []ProductRecord
			err := r.DB.WithContext(ctx).
				Preload("Prices", pricesByID).
				Where(cond, substring).
				Order("name").Order("id").
				Limit(searchBatchSize).Offset(offset).
				Find(&recs).Error
			if err != nil {
				yield(Product{}, fmt.Errorf("search products by %q: %w", substring, err))
				return
			}

			for _, rec := range recs {
				p, err := rec.toDomain()
				if err != nil {
					yield(Product{}, err)
					return
				}
				if !yield(p, nil) {
					return
				}
			}
			if len(recs) < searchBatchSize {
				return
			}
		}
	}
}

// LIKE tidak case-sensitive di sqlite dan memperlakukan % _ sebagai wildcard.
func containsCond(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "strpos(name, ?) > 0"
	}
	return "instr(name, ?) > 0"
}

// RemoveProductByID deletes the product and its prices. Products still
// referenced by basket items are rejected with ErrProductInUse. Deleting a
// missing id is not an error.
func (r *Repo) RemoveProductByID(ctx context.Context, id int64) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&ItemRecord{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %d items", ErrProductInUse, n)
		}
		if err := tx.Where("product = ?", id).Delete(&PriceRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&ProductRecord{}).Error
	})
	if err != nil {
		return fmt.Errorf("remove product %d: %w", id, err)
	}
	return nil
}

// UpdateProductByID overwrites name, description and the amount of each given
// price type. A price type the product does not have yet fails the whole
// update; prices are never inserted here.
func (r *Repo) UpdateProductByID(ctx context.Context, id int64, name, description string, prices []Price) error {
	if err := validatePrices(prices); err != nil {
		return err
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec ProductRecord
		if err := tx.First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if err := tx.Model(&rec).Updates(map[string]any{"name": name, "description": description}).Error; err != nil {
			return err
		}

		for _, pr := range prices {
			var prRec PriceRecord
			err := tx.Where("price_type = ? AND product = ?", string(pr.PriceType), id).First(&prRec).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no %s price", ErrPriceNotFound, pr.PriceType)
			}
			if err != nil {
				return err
			}
			if err := tx.Model(&prRec).Update("amount", pr.Amount).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	return nil
}

func toProducts(recs []ProductRecord) ([]Product, error) {
	out := make([]Product, 0, len(recs))
	for _, rec := range recs {
		p, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
