package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	billingstripe "github.com/dukerupert/fitcoach/internal/billing/stripe"
	"github.com/dukerupert/fitcoach/internal/store"
)

type fakeProvider struct {
	customersCreated int
	lastCustomer     string
	lastPrice        string
	lastUser         string
	lastReturnURL    string
	err              error
	onCreate         func()
}

func (p *fakeProvider) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.customersCreated++
	if p.onCreate != nil {
		p.onCreate()
	}
	return "cus_new", nil
}

func (p *fakeProvider) CreateCheckoutSession(ctx context.Context, customerID, priceID, userID string) (*billingstripe.CheckoutSession, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.lastCustomer, p.lastPrice, p.lastUser = customerID, priceID, userID
	return &billingstripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"}, nil
}

func (p *fakeProvider) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.lastCustomer, p.lastReturnURL = customerID, returnURL
	return "https://billing.stripe.com/p/session_1", nil
}

func setupCheckout(t *testing.T, defaultPrice string) (*CheckoutHandler, *fakeProvider, *store.CustomerStore) {
	t.Helper()
	db := setupTestDB(t)
	provider := &fakeProvider{}
	cs := store.NewCustomerStore(db)
	h := NewCheckoutHandler(provider, cs, store.NewUserStore(db), "https://coach.example.com/", defaultPrice, discardLogger())
	return h, provider, cs
}

func TestCheckoutCreatesAndLinksCustomer(t *testing.T) {
	h, provider, cs := setupCheckout(t, "")

	rec := httptest.NewRecorder()
	h.CreateCheckoutSession(rec, newRequest("POST", "/api/checkout", `{"priceId":"price_pro"}`, "user_42"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["sessionId"] != "cs_1" || resp["url"] == "" {
		t.Errorf("response = %v", resp)
	}
	if provider.lastPrice != "price_pro" || provider.lastUser != "user_42" || provider.lastCustomer != "cus_new" {
		t.Errorf("provider saw customer=%q price=%q user=%q", provider.lastCustomer, provider.lastPrice, provider.lastUser)
	}

	link, _ := cs.GetByUserID("user_42")
	if link == nil || link.StripeCustomerID != "cus_new" {
		t.Errorf("customer link = %+v", link)
	}

	rec = httptest.NewRecorder()
	h.CreateCheckoutSession(rec, newRequest("POST", "/api/checkout", `{"priceId":"price_pro"}`, "user_42"))
	if provider.customersCreated != 1 {
		t.Errorf("customers created = %d, want 1 (existing link reused)", provider.customersCreated)
	}
}

func TestCheckoutConcurrentCustomerCreationKeepsFirstLink(t *testing.T) {
	h, provider, cs := setupCheckout(t, "price_pro")
	provider.onCreate = func() { cs.Link("user_42", "cus_first") }

	rec := httptest.NewRecorder()
	h.CreateCheckoutSession(rec, newRequest("POST", "/api/checkout", `{}`, "user_42"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if provider.lastCustomer != "cus_first" {
		t.Errorf("checkout customer = %q, want cus_first", provider.lastCustomer)
	}
	link, _ := cs.GetByUserID("user_42")
	if link == nil || link.StripeCustomerID != "cus_first" {
		t.Errorf("customer link = %+v, want cus_first", link)
	}
}

func TestCheckoutDefaultPrice(t *testing.T) {
	h, provider, _ := setupCheckout(t, "price_default")

	rec := httptest.NewRecorder()
	h.CreateCheckoutSession(rec, newRequest("POST", "/api/checkout", `{}`, "user_42"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if provider.lastPrice != "price_default" {
		t.Errorf("price = %q, want %q", provider.lastPrice, "price_default")
	}
}

func TestCheckoutNoPriceConfigured(t *testing.T) {
	h, _, _ := setupCheckout(t, "")

	rec := httptest.NewRecorder()
	h.CreateCheckoutSession(rec, newRequest("POST", "/api/checkout", `{"priceId":""}`, "user_42"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCheckoutUnauthenticated(t *testing.T) {
	h, _, _ := setupCheckout(t, "price_default")

	rec := httptest.NewRecorder()
	h.CreateCheckoutSession(rec, newRequest("POST", "/api/checkout", `{}`, ""))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCheckoutProviderFailureIsGeneric(t *testing.T) {
	h, provider, _ := setupCheckout(t, "price_default")
	provider.err = errors.New("stripe: api key invalid")

	rec := httptest.NewRecorder()
	h.CreateCheckoutSession(rec, newRequest("POST", "/api/checkout", `{}`, "user_42"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "Internal Error" {
		t.Errorf("error = %q, want generic message", resp["error"])
	}
}

func TestBillingPortalWithoutCustomer(t *testing.T) {
	h, _, _ := setupCheckout(t, "")

	rec := httptest.NewRecorder()
	h.BillingPortal(rec, newRequest("POST", "/api/billing-portal", "", "user_42"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "Customer record not found. Link a payment method first." {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestBillingPortal(t *testing.T) {
	h, provider, cs := setupCheckout(t, "")
	cs.Link("user_42", "cus_1")

	rec := httptest.NewRecorder()
	h.BillingPortal(rec, newRequest("POST", "/api/billing-portal", "", "user_42"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if provider.lastCustomer != "cus_1" {
		t.Errorf("customer = %q, want %q", provider.lastCustomer, "cus_1")
	}
	if provider.lastReturnURL != "https://coach.example.com/dashboard/settings" {
		t.Errorf("return URL = %q", provider.lastReturnURL)
	}
}
