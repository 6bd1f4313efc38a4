package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/dukerupert/fitcoach/internal/model"
	"github.com/dukerupert/fitcoach/internal/store"
)

// ErrCustomerLinkMissing means no local user is linked to a Stripe customer yet.
var ErrCustomerLinkMissing = errors.New("customer link missing")

// SubscriptionFetcher retrieves the current state of a subscription from the provider.
type SubscriptionFetcher interface {
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
}

// Syncer applies provider events to the local billing tables.
type Syncer struct {
	products      *store.ProductStore
	prices        *store.PriceStore
	customers     *store.CustomerStore
	subscriptions *store.SubscriptionStore
	unlinked      *store.UnlinkedSubscriptionStore
	fetcher       SubscriptionFetcher
	metrics       *Metrics
	logger        *slog.Logger
}

func NewSyncer(db *sql.DB, fetcher SubscriptionFetcher, metrics *Metrics, logger *slog.Logger) *Syncer {
	return &Syncer{
		products:      store.NewProductStore(db),
		prices:        store.NewPriceStore(db),
		customers:     store.NewCustomerStore(db),
		subscriptions: store.NewSubscriptionStore(db),
		unlinked:      store.NewUnlinkedSubscriptionStore(db),
		fetcher:       fetcher,
		metrics:       metrics,
		logger:        logger.With("component", "billing"),
	}
}

// Apply dispatches a classified event. Errors are store or provider failures
// and should make the delivery retryable.
func (s *Syncer) Apply(ctx context.Context, event Event) (Outcome, error) {
	switch ev := event.(type) {
	case ProductEvent:
		if err := s.products.Upsert(ev.Product); err != nil {
			return OutcomeFailed, err
		}
		s.logger.Info("product synced", "product_id", ev.Product.ID, "event", ev.Type)
		return OutcomeApplied, nil

	case PriceEvent:
		if err := s.prices.Upsert(ev.Price); err != nil {
			return OutcomeFailed, err
		}
		s.logger.Info("price synced", "price_id", ev.Price.ID, "event", ev.Type)
		return OutcomeApplied, nil

	case SubscriptionEvent:
		return s.SyncSubscription(ctx, ev.Subscription, ev.Type)

	case CheckoutCompletedEvent:
		if ev.UserID != "" && ev.CustomerID != "" {
			err := s.customers.Link(ev.UserID, ev.CustomerID)
			switch {
			case errors.Is(err, store.ErrConflict):
				// The subscription follows the existing owner of the customer.
				s.logger.Warn("customer link skipped",
					"reason", "customer_linked_to_other_user",
					"user_id", ev.UserID,
					"customer_id", ev.CustomerID,
				)
			case err != nil:
				return OutcomeFailed, err
			default:
				s.logger.Info("customer linked", "user_id", ev.UserID, "customer_id", ev.CustomerID)
			}
		}
		return s.SyncSubscriptionByID(ctx, ev.SubscriptionID, ev.Type)

	case IgnoredEvent:
		return OutcomeIgnored, nil
	}
	return OutcomeFailed, fmt.Errorf("unhandled event %T", event)
}

// SyncSubscriptionByID fetches the subscription from the provider and syncs it.
func (s *Syncer) SyncSubscriptionByID(ctx context.Context, id, eventType string) (Outcome, error) {
	remote, err := s.fetcher.GetSubscription(ctx, id)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("fetch subscription: %w", err)
	}
	state, err := SubscriptionFromStripe(remote)
	if err != nil {
		return OutcomeFailed, err
	}
	return s.SyncSubscription(ctx, state, eventType)
}

// SyncSubscription resolves the owning user through the customer link and
// upserts the subscription. When no link exists the subscription is parked
// in unlinked_subscriptions and OutcomeLookupMiss is returned without error.
func (s *Syncer) SyncSubscription(ctx context.Context, state SubscriptionState, eventType string) (Outcome, error) {
	userID, err := s.resolveUser(state.CustomerID)
	if errors.Is(err, ErrCustomerLinkMissing) {
		s.logger.Warn("subscription not synced",
			"reason", "customer_link_missing",
			"subscription_id", state.Subscription.ID,
			"customer_id", state.CustomerID,
			"event", eventType,
		)
		s.metrics.observeLookupMiss()
		if err := s.unlinked.Record(state.Subscription.ID, state.CustomerID, eventType); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeLookupMiss, nil
	}
	if err != nil {
		return OutcomeFailed, err
	}

	sub := state.Subscription
	sub.UserID = userID
	if err := s.subscriptions.Upsert(sub); err != nil {
		return OutcomeFailed, err
	}
	if err := s.unlinked.Delete(sub.ID); err != nil {
		return OutcomeFailed, err
	}

	s.logger.Info("subscription synced",
		"subscription_id", sub.ID,
		"user_id", userID,
		"status", sub.Status,
		"event", eventType,
	)
	return OutcomeApplied, nil
}

func (s *Syncer) resolveUser(customerID string) (string, error) {
	cust, err := s.customers.GetByStripeID(customerID)
	if err != nil {
		return "", fmt.Errorf("resolve customer %s: %w", customerID, err)
	}
	if cust == nil {
		return "", ErrCustomerLinkMissing
	}
	return cust.ID, nil
}

// Reconcile retries parked subscriptions whose customer has since been
// linked. Rows still without a link stay pending with their attempts bumped.
// A failure on one row does not stop the others.
func (s *Syncer) Reconcile(ctx context.Context) (reconciled, pending int, err error) {
	rows, err := s.unlinked.List()
	if err != nil {
		return 0, 0, err
	}

	var errs []error
	for i, row := range rows {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			pending += len(rows) - i
			break
		}

		outcome, err := s.reconcileOne(ctx, row)
		switch {
		case err != nil:
			errs = append(errs, err)
			pending++
		case outcome == OutcomeApplied:
			reconciled++
		default:
			pending++
		}
	}

	if reconciled > 0 || len(errs) > 0 {
		s.logger.Info("reconcile finished", "reconciled", reconciled, "pending", pending, "errors", len(errs))
	}
	return reconciled, pending, errors.Join(errs...)
}

func (s *Syncer) reconcileOne(ctx context.Context, row model.UnlinkedSubscription) (Outcome, error) {
	if _, err := s.resolveUser(row.StripeCustomerID); err != nil {
		if errors.Is(err, ErrCustomerLinkMissing) {
			return OutcomeLookupMiss, s.unlinked.Touch(row.SubscriptionID)
		}
		return OutcomeFailed, err
	}

	outcome, err := s.SyncSubscriptionByID(ctx, row.SubscriptionID, "reconcile")
	if err != nil {
		return OutcomeFailed, fmt.Errorf("reconcile %s: %w", row.SubscriptionID, err)
	}
	return outcome, nil
}
