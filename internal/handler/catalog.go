package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/fitcoach/internal/model"
	"github.com/dukerupert/fitcoach/internal/store"
)

type CatalogHandler struct {
	products *store.ProductStore
	prices   *store.PriceStore
}

func NewCatalogHandler(ps *store.ProductStore, prs *store.PriceStore) *CatalogHandler {
	return &CatalogHandler{products: ps, prices: prs}
}

type catalogProduct struct {
	model.Product
	Prices []model.Price `json:"prices"`
}

// List returns active products with their active prices, as mirrored from Stripe.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListActive()
	if err != nil {
		slog.Error("list products", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list catalog")
		return
	}
	prices, err := h.prices.ListActive()
	if err != nil {
		slog.Error("list prices", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list catalog")
		return
	}

	byProduct := make(map[string][]model.Price)
	for _, p := range prices {
		byProduct[p.ProductID] = append(byProduct[p.ProductID], p)
	}

	out := make([]catalogProduct, 0, len(products))
	for _, p := range products {
		ps := byProduct[p.ID]
		if ps == nil {
			ps = []model.Price{}
		}
		out = append(out, catalogProduct{Product: p, Prices: ps})
	}
	writeJSON(w, http.StatusOK, out)
}
