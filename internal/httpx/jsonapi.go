package httpx

import (
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
)

type resourceRef struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

type links struct {
	Self string `json:"self"`
}

type priceAttributes struct {
	Amount    int               `json:"amount"`
	PriceType catalog.PriceType `json:"price_type"`
}

type includedPrice struct {
	Type       string          `json:"type"`
	ID         int64           `json:"id"`
	Attributes priceAttributes `json:"attributes"`
	Links      links           `json:"links"`
}

type relationship struct {
	Data []resourceRef `json:"data"`
}

type productRelationships struct {
	Prices relationship `json:"prices"`
}

type productDoc struct {
	Type          string               `json:"type"`
	ID            int64                `json:"id"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	Relationships productRelationships `json:"relationships"`
	Links         links                `json:"links"`
	Included      []includedPrice      `json:"included"`
}

type itemDoc struct {
	Amount  int        `json:"amount"`
	Product productDoc `json:"product"`
}

type basketDoc struct {
	Type            string          `json:"type"`
	ReferenceNumber string          `json:"reference_number"`
	OwnerName       string          `json:"owner_name"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []itemDoc       `json:"items"`
	DefaultPrices   []includedPrice `json:"default_prices"`
}

// docBuilder renders catalog values in the JSON-API flavoured shape clients expect.
type docBuilder struct {
	baseURL string
}

func newDocBuilder(baseURL string) docBuilder {
	return docBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

func (b docBuilder) productLink(id int64) string {
	return fmt.Sprintf("%s/products/product/%d", b.baseURL, id)
}

func (b docBuilder) priceLink(id int64) string {
	return fmt.Sprintf("%s/prices/%d", b.baseURL, id)
}

func (b docBuilder) price(p catalog.Price) includedPrice {
	return includedPrice{
		Type:       "price",
		ID:         p.ID,
		Attributes: priceAttributes{Amount: p.Amount, PriceType: p.PriceType},
		Links:      links{Self: b.priceLink(p.ID)},
	}
}

func (b docBuilder) product(p catalog.Product) productDoc {
	refs := make([]resourceRef, 0, len(p.Prices))
	included := make([]includedPrice, 0, len(p.Prices))
	for _, pr := range p.Prices {
		refs = append(refs, resourceRef{Type: "price", ID: pr.ID})
		included = append(included, b.price(pr))
	}
	return productDoc{
		Type:          "product",
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Relationships: productRelationships{Prices: relationship{Data: refs}},
		Links:         links{Self: b.productLink(p.ID)},
		Included:      included,
	}
}

func (b docBuilder) products(ps []catalog.Product) []productDoc {
	out := make([]productDoc, 0, len(ps))
	for _, p := range ps {
		out = append(out, b.product(p))
	}
	return out
}

func (b docBuilder) basket(bk catalog.Basket, defaults []catalog.Price) basketDoc {
	items := make([]itemDoc, 0, len(bk.Items))
	for _, it := range bk.Items {
		items = append(items, itemDoc{Amount: it.Amount, Product: b.product(it.Product)})
	}
	prices := make([]includedPrice, 0, len(defaults))
	for _, pr := range defaults {
		prices = append(prices, b.price(pr))
	}
	return basketDoc{
		Type:            "basket",
		ReferenceNumber: bk.ReferenceNumber,
		OwnerName:       bk.OwnerName,
		CreatedAt:       bk.CreatedAt,
		UpdatedAt:       bk.UpdatedAt,
		Items:           items,
		DefaultPrices:   prices,
	}
}
