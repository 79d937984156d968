package catalog

import (
	"context"
	"fmt"
	"time"
)

// satu baris hasil join basket -> item -> product -> price
type basketRow struct {
	BasketID           int64
	ReferenceNumber    *string
	OwnerName          *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ItemID             *int64
	ItemAmount         *int
	ProductID          *int64
	ProductName        *string
	ProductDescription *string
	PriceID            *int64
	PriceAmount        *int
	PriceType          *string
}

const basketByReferenceSQL = `
	SELECT b.id AS basket_id, b.reference_number, b.owner_name, b.created_at, b.updated_at,
	       i.id AS item_id, i.amount AS item_amount,
	       p.id AS product_id, p.name AS product_name, p.description AS product_description,
	       pr.id AS price_id, pr.amount AS price_amount, pr.price_type
	FROM basket b
	LEFT JOIN item i ON i.basket = b.id
	LEFT JOIN product p ON p.id = i.product_id
	LEFT JOIN price pr ON pr.product = p.id
	WHERE b.reference_number = ?
	ORDER BY b.id, i.id, pr.id`

// GetBasketByReferenceNumber loads the basket with its items, their products
// and the product prices in a single query. Zero or several baskets with the
// same reference number both fail with ErrBasketNotFound.
func (r *Repo) GetBasketByReferenceNumber(ctx context.Context, referenceNumber string) (Basket, error) {
	var rows []basketRow
	if err := r.DB.WithContext(ctx).Raw(basketByReferenceSQL, referenceNumber).Scan(&rows).Error; err != nil {
		return Basket{}, fmt.Errorf("get basket %q: %w", referenceNumber, err)
	}
	if len(rows) == 0 {
		return Basket{}, fmt.Errorf("%w: reference %q", ErrBasketNotFound, referenceNumber)
	}
	return assembleBasket(referenceNumber, rows)
}

func assembleBasket(referenceNumber string, rows []basketRow) (Basket, error) {
	first := rows[0]
	b := Basket{
		ReferenceNumber: deref(first.ReferenceNumber),
		OwnerName:       deref(first.OwnerName),
		CreatedAt:       first.CreatedAt,
		UpdatedAt:       first.UpdatedAt,
		Items:           []Item{},
	}

	itemIdx := map[int64]int{}
	for _, row := range rows {
		if row.BasketID != first.BasketID {
			return Basket{}, fmt.Errorf("%w: reference %q matches more than one basket", ErrBasketNotFound, referenceNumber)
		}
		if row.ItemID == nil {
			continue
		}

		idx, ok := itemIdx[*row.ItemID]
		if !ok {
			it := Item{Amount: deref(row.ItemAmount)}
			if row.ProductID != nil {
				it.Product = Product{
					ID:          *row.ProductID,
					Name:        deref(row.ProductName),
					Description: deref(row.ProductDescription),
					Prices:      []Price{},
				}
			}
			b.Items = append(b.Items, it)
			idx = len(b.Items) - 1
			itemIdx[*row.ItemID] = idx
		}

		if row.PriceID == nil {
			continue
		}
		pr, err := PriceRecord{
			ID:        *row.PriceID,
			Amount:    row.PriceAmount,
			PriceType: deref(row.PriceType),
		}.toDomain()
		if err != nil {
			return Basket{}, err
		}
		b.Items[idx].Product.Prices = append(b.Items[idx].Product.Prices, pr)
	}
	return b, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
