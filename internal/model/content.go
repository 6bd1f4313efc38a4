package model

import "time"

type PricingPlan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Period      string    `json:"period"`
	Description string    `json:"description"`
	Features    []string  `json:"features"`
	PriceID     string    `json:"price_id"`
	Popular     bool      `json:"popular"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
}

type Transformation struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Achievement    string    `json:"achievement"`
	Quote          string    `json:"quote"`
	Program        string    `json:"program"`
	ImageBeforeURL string    `json:"image_before_url"`
	ImageAfterURL  string    `json:"image_after_url"`
	CreatedAt      time.Time `json:"created_at"`
}
