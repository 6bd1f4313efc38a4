package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/fitcoach/internal/auth"
	billingstripe "github.com/dukerupert/fitcoach/internal/billing/stripe"
	"github.com/dukerupert/fitcoach/internal/store"
)

// BillingProvider is the subset of the Stripe client used to start checkout
// and open the customer portal.
type BillingProvider interface {
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID, userID string) (*billingstripe.CheckoutSession, error)
	CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

type CheckoutHandler struct {
	provider       BillingProvider
	customerStore  *store.CustomerStore
	userStore      *store.UserStore
	siteURL        string
	defaultPriceID string
	logger         *slog.Logger
}

func NewCheckoutHandler(p BillingProvider, cs *store.CustomerStore, us *store.UserStore, siteURL, defaultPriceID string, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		provider:       p,
		customerStore:  cs,
		userStore:      us,
		siteURL:        strings.TrimRight(siteURL, "/"),
		defaultPriceID: defaultPriceID,
		logger:         logger.With("component", "checkout"),
	}
}

// CreateCheckoutSession starts a subscription checkout for the signed-in user,
// creating and linking a Stripe customer on first use.
func (h *CheckoutHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		PriceID string `json:"priceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	priceID := strings.TrimSpace(req.PriceID)
	if priceID == "" {
		priceID = h.defaultPriceID
	}
	if priceID == "" {
		writeError(w, http.StatusBadRequest, "priceId is required")
		return
	}

	customerID, err := h.ensureCustomer(r.Context(), ac)
	if err != nil {
		h.logger.Error("ensure stripe customer", "user_id", ac.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Error")
		return
	}

	sess, err := h.provider.CreateCheckoutSession(r.Context(), customerID, priceID, ac.UserID)
	if err != nil {
		h.logger.Error("create checkout session", "user_id", ac.UserID, "price_id", priceID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"sessionId": sess.ID, "url": sess.URL})
}

func (h *CheckoutHandler) ensureCustomer(ctx context.Context, ac auth.AuthContext) (string, error) {
	existing, err := h.customerStore.GetByUserID(ac.UserID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.StripeCustomerID, nil
	}

	email := ac.Email
	if email == "" {
		if u, err := h.userStore.GetByID(ac.UserID); err == nil && u != nil && u.Email != nil {
			email = *u.Email
		}
	}

	customerID, err := h.provider.CreateCustomer(ctx, email, ac.UserID)
	if err != nil {
		return "", err
	}
	linked, err := h.customerStore.LinkIfAbsent(ac.UserID, customerID)
	if err != nil {
		return "", err
	}
	if linked != customerID {
		// A concurrent checkout linked its customer first.
		h.logger.Warn("stripe customer left unlinked", "user_id", ac.UserID, "customer_id", customerID, "linked_customer_id", linked)
		return linked, nil
	}
	h.logger.Info("stripe customer created", "user_id", ac.UserID, "customer_id", customerID)
	return customerID, nil
}

// BillingPortal opens the Stripe billing portal for a user who already has a
// customer record.
func (h *CheckoutHandler) BillingPortal(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cust, err := h.customerStore.GetByUserID(userID)
	if err != nil {
		h.logger.Error("get customer link", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Error")
		return
	}
	if cust == nil {
		writeError(w, http.StatusBadRequest, "Customer record not found. Link a payment method first.")
		return
	}

	url, err := h.provider.CreateBillingPortalSession(r.Context(), cust.StripeCustomerID, h.siteURL+"/dashboard/settings")
	if err != nil {
		h.logger.Error("create billing portal session", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
