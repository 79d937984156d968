package catalog

import (
	"fmt"
	"time"
)

type Price struct {
	ID        int64 // 0 sampai tersimpan
	Amount    int
	PriceType PriceType
}

type Product struct {
	ID          int64 // 0 sampai tersimpan
	Name        string
	Description string
	Prices      []Price
}

type Item struct {
	Amount  int
	Product Product // referensi, bukan milik item
}

type Basket struct {
	ReferenceNumber string
	OwnerName       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []Item
}

func NewPrice(amount int, t PriceType) Price {
	return Price{Amount: amount, PriceType: t}
}

func NewProduct(name, description string, prices ...Price) Product {
	return Product{Name: name, Description: description, Prices: prices}
}

func NewItem(amount int, product Product) Item {
	return Item{Amount: amount, Product: product}
}

func NewBasket(referenceNumber, ownerName string, createdAt, updatedAt time.Time, items ...Item) Basket {
	return Basket{
		ReferenceNumber: referenceNumber,
		OwnerName:       ownerName,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		Items:           items,
	}
}

// GetPrice returns the first price of type t.
func (p Product) GetPrice(t PriceType) (Price, error) {
	for _, pr := range p.Prices {
		if pr.PriceType == t {
			return pr, nil
		}
	}
	return Price{}, fmt.Errorf("%w: product %q has no %s price", ErrPriceNotFound, p.Name, t)
}

// Validate checks that every price has a known type and that no type repeats.
func (p Product) Validate() error {
	return validatePrices(p.Prices)
}

func validatePrices(prices []Price) error {
	seen := make(map[PriceType]bool, len(prices))
	for _, pr := range prices {
		if !pr.PriceType.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownPriceType, string(pr.PriceType))
		}
		if seen[pr.PriceType] {
			return fmt.Errorf("%w: %s", ErrDuplicatePriceType, pr.PriceType)
		}
		seen[pr.PriceType] = true
	}
	return nil
}

func (it Item) GetDefaultPrice() (Price, error) {
	return it.Product.GetPrice(PriceTypeOneTime)
}

// GetAllPrices returns the default price of every item, in item order.
func (b Basket) GetAllPrices() ([]Price, error) {
	out := make([]Price, 0, len(b.Items))
	for i, it := range b.Items {
		pr, err := it.GetDefaultPrice()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, pr)
	}
	return out, nil
}
