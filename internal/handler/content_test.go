package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/fitcoach/internal/model"
	"github.com/dukerupert/fitcoach/internal/store"
)

func TestPricingPlanCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	h := NewPricingPlanHandler(store.NewPricingPlanStore(db))

	rec := serve("POST /api/admin/pricing-plans", h.Create, newRequest("POST", "/api/admin/pricing-plans",
		`{"name":"Pro","price":"49","period":"/month","features":["Weekly check-ins","Custom plan"],"price_id":"price_pro","popular":true,"order_index":1}`, ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	rec = serve("POST /api/admin/pricing-plans", h.Create, newRequest("POST", "/api/admin/pricing-plans",
		`{"name":"Weird","price":"cheap","period":"/fortnight"}`, ""))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid plan: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = httptest.NewRecorder()
	h.List(rec, newRequest("GET", "/api/pricing-plans", "", ""))
	var plans []model.PricingPlan
	json.NewDecoder(rec.Body).Decode(&plans)
	if len(plans) != 1 || len(plans[0].Features) != 2 || !plans[0].Popular {
		t.Errorf("plans = %+v", plans)
	}
}

func TestTransformationRequiresImages(t *testing.T) {
	db := setupTestDB(t)
	h := NewTransformationHandler(store.NewTransformationStore(db))

	rec := serve("POST /api/admin/transformations", h.Create, newRequest("POST", "/api/admin/transformations",
		`{"name":"Ana","achievement":"-12kg","quote":"Worth it","program":"Cut","image_before_url":"not a url","image_after_url":""}`, ""))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = serve("POST /api/admin/transformations", h.Create, newRequest("POST", "/api/admin/transformations",
		`{"name":"Ana","achievement":"-12kg","quote":"Worth it","program":"Cut","image_before_url":"https://img/b.jpg","image_after_url":"https://img/a.jpg"}`, ""))
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d (body %q)", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func TestWorkoutUpdateMissing(t *testing.T) {
	db := setupTestDB(t)
	h := NewWorkoutHandler(store.NewWorkoutStore(db))

	rec := serve("PUT /api/admin/workouts/{id}", h.Update, newRequest("PUT", "/api/admin/workouts/nope",
		`{"title":"Row","duration_minutes":20,"difficulty":"beginner"}`, ""))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCatalogGroupsPricesByProduct(t *testing.T) {
	db := setupTestDB(t)
	products := store.NewProductStore(db)
	prices := store.NewPriceStore(db)
	products.Upsert(model.Product{ID: "prod_1", Active: true, Name: "Coaching"})
	products.Upsert(model.Product{ID: "prod_2", Active: false, Name: "Retired"})
	prices.Upsert(model.Price{ID: "price_1", ProductID: "prod_1", Active: true, Currency: "usd", Type: "recurring"})
	prices.Upsert(model.Price{ID: "price_2", ProductID: "prod_1", Active: false, Currency: "usd", Type: "recurring"})

	h := NewCatalogHandler(products, prices)
	rec := httptest.NewRecorder()
	h.List(rec, newRequest("GET", "/api/catalog", "", ""))

	var catalog []struct {
		ID     string        `json:"id"`
		Prices []model.Price `json:"prices"`
	}
	json.NewDecoder(rec.Body).Decode(&catalog)
	if len(catalog) != 1 || catalog[0].ID != "prod_1" || len(catalog[0].Prices) != 1 {
		t.Errorf("catalog = %+v", catalog)
	}
}
