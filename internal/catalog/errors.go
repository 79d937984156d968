package catalog

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrBasketNotFound     = errors.New("basket not found")
	ErrPriceNotFound      = errors.New("price not found")
	ErrUnknownPriceType   = errors.New("unknown price type")
	ErrDuplicatePriceType = errors.New("duplicate price type")
	ErrProductInUse       = errors.New("product is referenced by basket items")
)
