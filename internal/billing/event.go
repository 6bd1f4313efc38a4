package billing

import (
	"encoding/json"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/dukerupert/fitcoach/internal/model"
)

// Event is a verified webhook event reduced to the data the syncer acts on.
// The concrete type selects the dispatch branch.
type Event interface {
	EventType() string
	isEvent()
}

// ProductEvent carries product.created and product.updated.
type ProductEvent struct {
	Type    string
	Product model.Product
}

// PriceEvent carries price.created and price.updated.
type PriceEvent struct {
	Type  string
	Price model.Price
}

// SubscriptionEvent carries customer.subscription.created, updated and deleted.
type SubscriptionEvent struct {
	Type         string
	Subscription SubscriptionState
}

// CheckoutCompletedEvent carries a checkout.session.completed in subscription mode.
type CheckoutCompletedEvent struct {
	Type           string
	UserID         string
	CustomerID     string
	SubscriptionID string
}

// IgnoredEvent is any event outside the handled set. It is acknowledged
// without writes.
type IgnoredEvent struct {
	Type string
}

func (e ProductEvent) EventType() string           { return e.Type }
func (e PriceEvent) EventType() string             { return e.Type }
func (e SubscriptionEvent) EventType() string      { return e.Type }
func (e CheckoutCompletedEvent) EventType() string { return e.Type }
func (e IgnoredEvent) EventType() string           { return e.Type }

func (ProductEvent) isEvent()           {}
func (PriceEvent) isEvent()             {}
func (SubscriptionEvent) isEvent()      {}
func (CheckoutCompletedEvent) isEvent() {}
func (IgnoredEvent) isEvent()           {}

// SubscriptionState is a provider subscription before its user is resolved.
// Subscription.UserID is empty until the customer link is found.
type SubscriptionState struct {
	Subscription model.Subscription
	CustomerID   string
}

// Classify decodes the event payload for the handled event types. Unknown
// types become IgnoredEvent. A payload that does not decode is an error.
func Classify(event stripe.Event) (Event, error) {
	typ := string(event.Type)
	var raw []byte
	if event.Data != nil {
		raw = event.Data.Raw
	}

	switch event.Type {
	case stripe.EventTypeProductCreated, stripe.EventTypeProductUpdated:
		var p stripe.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return ProductEvent{Type: typ, Product: productFromStripe(&p)}, nil

	case stripe.EventTypePriceCreated, stripe.EventTypePriceUpdated:
		price, err := decodePrice(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return PriceEvent{Type: typ, Price: price}, nil

	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var s stripe.Subscription
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		state, err := SubscriptionFromStripe(&s)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return SubscriptionEvent{Type: typ, Subscription: state}, nil

	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(raw, &sess); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		if sess.Mode != stripe.CheckoutSessionModeSubscription {
			return IgnoredEvent{Type: typ}, nil
		}
		ev := CheckoutCompletedEvent{Type: typ, UserID: sess.ClientReferenceID}
		if sess.Customer != nil {
			ev.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			ev.SubscriptionID = sess.Subscription.ID
		}
		if ev.SubscriptionID == "" {
			return nil, fmt.Errorf("decode %s: session %s has no subscription", typ, sess.ID)
		}
		return ev, nil
	}

	return IgnoredEvent{Type: typ}, nil
}

func productFromStripe(p *stripe.Product) model.Product {
	out := model.Product{
		ID:          p.ID,
		Active:      p.Active,
		Name:        p.Name,
		Description: p.Description,
		Metadata:    p.Metadata,
	}
	if len(p.Images) > 0 {
		img := p.Images[0]
		out.Image = &img
	}
	return out
}

// priceNullables holds the price fields whose absence must stay distinct from zero.
type priceNullables struct {
	UnitAmount *int64 `json:"unit_amount"`
	Recurring  *struct {
		TrialPeriodDays *int64 `json:"trial_period_days"`
	} `json:"recurring"`
}

func decodePrice(raw []byte) (model.Price, error) {
	var p stripe.Price
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Price{}, err
	}
	var n priceNullables
	if err := json.Unmarshal(raw, &n); err != nil {
		return model.Price{}, err
	}

	out := model.Price{
		ID:          p.ID,
		Active:      p.Active,
		Description: p.Nickname,
		Currency:    string(p.Currency),
		Type:        string(p.Type),
		UnitAmount:  n.UnitAmount,
		Metadata:    p.Metadata,
	}
	if p.Product != nil {
		out.ProductID = p.Product.ID
	}
	if p.Recurring != nil {
		interval := string(p.Recurring.Interval)
		count := p.Recurring.IntervalCount
		out.Interval = &interval
		out.IntervalCount = &count
	}
	if n.Recurring != nil {
		out.TrialPeriodDays = n.Recurring.TrialPeriodDays
	}
	return out, nil
}

// SubscriptionFromStripe maps a provider subscription onto the stored shape.
// Price and period come from the first subscription item.
func SubscriptionFromStripe(s *stripe.Subscription) (SubscriptionState, error) {
	if s.Customer == nil || s.Customer.ID == "" {
		return SubscriptionState{}, fmt.Errorf("subscription %s has no customer", s.ID)
	}
	if s.Items == nil || len(s.Items.Data) == 0 || s.Items.Data[0] == nil {
		return SubscriptionState{}, fmt.Errorf("subscription %s has no items", s.ID)
	}
	item := s.Items.Data[0]

	sub := model.Subscription{
		ID:                 s.ID,
		Status:             string(s.Status),
		Metadata:           s.Metadata,
		Quantity:           item.Quantity,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CancelAt:           unixPtr(s.CancelAt),
		CanceledAt:         unixPtr(s.CanceledAt),
		CurrentPeriodStart: unixPtr(item.CurrentPeriodStart),
		CurrentPeriodEnd:   unixPtr(item.CurrentPeriodEnd),
		Created:            time.Unix(s.Created, 0).UTC(),
		EndedAt:            unixPtr(s.EndedAt),
		TrialStart:         unixPtr(s.TrialStart),
		TrialEnd:           unixPtr(s.TrialEnd),
	}
	if item.Price != nil {
		sub.PriceID = item.Price.ID
	}
	if sub.Quantity == 0 {
		sub.Quantity = 1
	}
	return SubscriptionState{Subscription: sub, CustomerID: s.Customer.ID}, nil
}

func unixPtr(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
