package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
	"github.com/ariefcatur/go-catalog-api/internal/errx"
	kafkax "github.com/ariefcatur/go-catalog-api/internal/kafka"
	"github.com/ariefcatur/go-catalog-api/internal/logx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ProductStore interface {
	ListProducts(ctx context.Context, orderByName bool) ([]catalog.Product, error)
	AddProduct(ctx context.Context, p *catalog.Product) error
	SearchProductByName(ctx context.Context, name string) (catalog.Product, error)
	SearchProductsBySubstring(ctx context.Context, substring string) iter.Seq2[catalog.Product, error]
	RemoveProductByID(ctx context.Context, id int64) error
	UpdateProductByID(ctx context.Context, id int64, name, description string, prices []catalog.Price) error
}

type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (int64, bool, error)
	Remember(ctx context.Context, key string, productID int64) error
}

// ProductsHandler serves /products. Producer and Idempotency are optional.
type ProductsHandler struct {
	Repo        ProductStore
	Producer    EventPublisher
	Idempotency IdempotencyStore
	BaseURL     string
	Service     string
}

type PriceReq struct {
	Amount    *int   `json:"amount" validate:"required"`
	PriceType string `json:"price_type" validate:"required,oneof=recurring one-time usage"`
}

type ProductReq struct {
	Name        string     `json:"name" validate:"required,max=64"`
	Description string     `json:"description"`
	Prices      []PriceReq `json:"prices" validate:"dive"`
}

const headerIdempotencyKey = "Idempotency-Key"

var (
	validate = validator.New(validator.WithRequiredStructEnabled())
	tracer   = otel.Tracer(instrumentationName)
)

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/product/{key}", h.getProduct)
	r.Delete("/products/product/{key}", h.deleteProduct)
	r.Put("/products/product/{key}", h.updateProduct)
}

func (req ProductReq) prices() ([]catalog.Price, error) {
	out := make([]catalog.Price, 0, len(req.Prices))
	for _, pr := range req.Prices {
		t, err := catalog.ParsePriceType(pr.PriceType)
		if err != nil {
			return nil, err
		}
		out = append(out, catalog.NewPrice(*pr.Amount, t))
	}
	return out, nil
}

func decodeProductReq(r *http.Request) (ProductReq, *errx.AppError) {
	var req ProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errx.New(err, http.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(req); err != nil {
		return req, errx.New(err, http.StatusBadRequest, err.Error())
	}
	return req, nil
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "products.list")
	defer span.End()

	sortByName := false
	if s := r.URL.Query().Get("sort"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, span, errx.New(err, http.StatusBadRequest, "invalid sort flag"))
			return
		}
		sortByName = v
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ps, err := h.Repo.ListProducts(ctx, sortByName)
	if err != nil {
		writeError(w, span, err)
		return
	}
	span.SetAttributes(attribute.Int("products", len(ps)))
	writeJSON(w, http.StatusOK, map[string]any{"data": newDocBuilder(h.BaseURL).products(ps)})
}

func (h *ProductsHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "products.create")
	defer span.End()

	req, appErr := decodeProductReq(r)
	if appErr != nil {
		writeError(w, span, appErr)
		return
	}
	prices, err := req.prices()
	if err != nil {
		writeError(w, span, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	docs := newDocBuilder(h.BaseURL)
	idemKey := r.Header.Get(headerIdempotencyKey)
	if idemKey != "" && h.Idempotency != nil {
		id, ok, err := h.Idempotency.Lookup(ctx, idemKey)
		if err != nil {
			// redis hanya jalan pintas, DB tetap jadi kebenaran
			logx.Warn().Err(err).Str("key", idemKey).Msg("idempotency lookup failed")
		} else if ok {
			w.Header().Set("Idempotent-Replayed", "true")
			writeJSON(w, http.StatusOK, map[string]any{"data": resourceRefWithLinks{
				Type:  "product",
				ID:    id,
				Links: links{Self: docs.productLink(id)},
			}})
			return
		}
	}

	p := catalog.NewProduct(req.Name, req.Description, prices...)
	if err := h.Repo.AddProduct(ctx, &p); err != nil {
		writeError(w, span, err)
		return
	}
	span.SetAttributes(attribute.Int64("product_id", p.ID))

	if idemKey != "" && h.Idempotency != nil {
		if err := h.Idempotency.Remember(ctx, idemKey, p.ID); err != nil {
			logx.Warn().Err(err).Str("key", idemKey).Msg("idempotency store failed")
		}
	}
	h.publish(r, catalog.EventProductCreated, p.ID, catalog.NewProductPayload(p))

	writeJSON(w, http.StatusCreated, map[string]any{"data": docs.product(p)})
}

type resourceRefWithLinks struct {
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Links links  `json:"links"`
}

// getProduct: angka = lookup by id (belum didukung), "nama*" = substring, selain itu exact name.
func (h *ProductsHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "products.get")
	defer span.End()

	key := productKey(r)
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		writeError(w, span, errx.New(catalog.ErrProductNotFound, http.StatusNotFound,
			fmt.Sprintf("Product with id %d does not exist", id)))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	docs := newDocBuilder(h.BaseURL)
	notFound := errx.New(catalog.ErrProductNotFound, http.StatusNotFound,
		fmt.Sprintf("Product with name %s does not exist", key))

	if substring, ok := strings.CutSuffix(key, "*"); ok {
		span.SetAttributes(attribute.String("substring", substring))
		var found []catalog.Product
		for p, err := range h.Repo.SearchProductsBySubstring(ctx, substring) {
			if err != nil {
				writeError(w, span, err)
				return
			}
			found = append(found, p)
		}
		if len(found) == 0 {
			writeError(w, span, notFound)
			return
		}
		writeJSON(w, http.StatusOK, docs.products(found))
		return
	}

	span.SetAttributes(attribute.String("name", key))
	p, err := h.Repo.SearchProductByName(ctx, key)
	if err != nil {
		if errx.FromCatalog(err).Status == http.StatusNotFound {
			notFound.Err = err
			err = notFound
		}
		writeError(w, span, err)
		return
	}
	writeJSON(w, http.StatusOK, docs.product(p))
}

func (h *ProductsHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "products.delete")
	defer span.End()

	id, appErr := productID(r)
	if appErr != nil {
		writeError(w, span, appErr)
		return
	}
	span.SetAttributes(attribute.Int64("product_id", id))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.Repo.RemoveProductByID(ctx, id); err != nil {
		writeError(w, span, err)
		return
	}
	h.publish(r, catalog.EventProductDeleted, id, catalog.ProductDeletedPayload{ProductID: id})

	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Deleted product with id: %d", id)})
}

func (h *ProductsHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "products.update")
	defer span.End()

	id, appErr := productID(r)
	if appErr != nil {
		writeError(w, span, appErr)
		return
	}
	span.SetAttributes(attribute.Int64("product_id", id))

	req, appErr := decodeProductReq(r)
	if appErr != nil {
		writeError(w, span, appErr)
		return
	}
	prices, err := req.prices()
	if err != nil {
		writeError(w, span, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.Repo.UpdateProductByID(ctx, id, req.Name, req.Description, prices); err != nil {
		writeError(w, span, err)
		return
	}

	p := catalog.NewProduct(req.Name, req.Description, prices...)
	p.ID = id
	h.publish(r, catalog.EventProductUpdated, id, catalog.NewProductPayload(p))

	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Updated product with id: %d", id)})
}

func (h *ProductsHandler) publish(r *http.Request, eventType string, productID int64, payload any) {
	if h.Producer == nil {
		return
	}
	traceID := r.Header.Get("X-Request-Id")
	if traceID == "" {
		traceID = middleware.GetReqID(r.Context())
	}
	ev := catalog.NewEnvelope(eventType, h.Service, traceID,
		strconv.FormatInt(productID, 10), kafkax.MustMarshal(payload))
	h.Producer.Publish(catalog.PartitionKey(productID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func productKey(r *http.Request) string {
	key := chi.URLParam(r, "key")
	if unescaped, err := url.PathUnescape(key); err == nil {
		return unescaped
	}
	return key
}

func productID(r *http.Request) (int64, *errx.AppError) {
	key := productKey(r)
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, errx.New(err, http.StatusNotFound, fmt.Sprintf("Product with id %s does not exist", key))
	}
	return id, nil
}

func writeError(w http.ResponseWriter, span trace.Span, err error) {
	appErr := errx.FromCatalog(err)
	span.RecordError(err)
	if appErr.Status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, appErr.Message)
		logx.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, appErr.Status, map[string]string{"message": appErr.Message})
}
