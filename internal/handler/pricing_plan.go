package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/fitcoach/internal/model"
	"github.com/dukerupert/fitcoach/internal/store"
)

type PricingPlanHandler struct {
	store *store.PricingPlanStore
}

func NewPricingPlanHandler(s *store.PricingPlanStore) *PricingPlanHandler {
	return &PricingPlanHandler{store: s}
}

type pricingPlanRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Price       string   `json:"price" validate:"required,numeric"`
	Period      string   `json:"period" validate:"required,oneof=/month /year /one-time"`
	Description string   `json:"description" validate:"max=1000"`
	Features    []string `json:"features" validate:"dive,required,max=200"`
	PriceID     string   `json:"price_id" validate:"max=255"`
	Popular     bool     `json:"popular"`
	OrderIndex  int      `json:"order_index" validate:"min=0"`
}

func (req pricingPlanRequest) toModel() model.PricingPlan {
	features := req.Features
	if features == nil {
		features = []string{}
	}
	return model.PricingPlan{
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Period:      req.Period,
		Description: req.Description,
		Features:    features,
		PriceID:     strings.TrimSpace(req.PriceID),
		Popular:     req.Popular,
		OrderIndex:  req.OrderIndex,
	}
}

func (h *PricingPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.store.List()
	if err != nil {
		slog.Error("list pricing plans", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list pricing plans")
		return
	}
	if plans == nil {
		plans = []model.PricingPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *PricingPlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req pricingPlanRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	plan, err := h.store.Create(req.toModel())
	if err != nil {
		slog.Error("create pricing plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create pricing plan")
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (h *PricingPlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req pricingPlanRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	plan, err := h.store.Update(r.PathValue("id"), req.toModel())
	if err != nil {
		slog.Error("update pricing plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update pricing plan")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "pricing plan not found")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *PricingPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.Delete(r.PathValue("id"))
	if err != nil {
		slog.Error("delete pricing plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete pricing plan")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "pricing plan not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
