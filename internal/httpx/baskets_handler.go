package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
)

type BasketStore interface {
	GetBasketByReferenceNumber(ctx context.Context, referenceNumber string) (catalog.Basket, error)
}

type BasketsHandler struct {
	Repo    BasketStore
	BaseURL string
}

func (h *BasketsHandler) Register(r *chi.Mux) {
	r.Get("/baskets/{reference}", h.getBasket)
}

func (h *BasketsHandler) getBasket(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "baskets.get")
	defer span.End()

	ref := chi.URLParam(r, "reference")
	span.SetAttributes(attribute.String("reference_number", ref))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := h.Repo.GetBasketByReferenceNumber(ctx, ref)
	if err != nil {
		writeError(w, span, err)
		return
	}
	// gagal kalau ada product tanpa harga one-time
	prices, err := b.GetAllPrices()
	if err != nil {
		writeError(w, span, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": newDocBuilder(h.BaseURL).basket(b, prices)})
}
