package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/fitcoach/internal/model"
)

// PriceStore mirrors Stripe prices.
type PriceStore struct {
	db *sql.DB
}

func NewPriceStore(db *sql.DB) *PriceStore {
	return &PriceStore{db: db}
}

func scanPrice(scanner interface{ Scan(...any) error }) (*model.Price, error) {
	var p model.Price
	var active int
	var unitAmount, intervalCount, trialDays sql.NullInt64
	var interval sql.NullString
	var metadata string
	err := scanner.Scan(
		&p.ID, &p.ProductID, &active, &p.Description, &p.Currency, &p.Type,
		&unitAmount, &interval, &intervalCount, &trialDays, &metadata,
	)
	if err != nil {
		return nil, err
	}
	p.Active = active != 0
	if unitAmount.Valid {
		p.UnitAmount = &unitAmount.Int64
	}
	if interval.Valid {
		p.Interval = &interval.String
	}
	if intervalCount.Valid {
		p.IntervalCount = &intervalCount.Int64
	}
	if trialDays.Valid {
		p.TrialPeriodDays = &trialDays.Int64
	}
	m, err := decodeMetadata(metadata)
	if err != nil {
		return nil, err
	}
	p.Metadata = m
	return &p, nil
}

const priceCols = `id, product_id, active, description, currency, type, unit_amount, interval, interval_count, trial_period_days, metadata`

// Upsert writes the price keyed by its Stripe id, replacing every column.
func (s *PriceStore) Upsert(p model.Price) error {
	metadata, err := encodeMetadata(p.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO prices (`+priceCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   product_id = excluded.product_id,
		   active = excluded.active,
		   description = excluded.description,
		   currency = excluded.currency,
		   type = excluded.type,
		   unit_amount = excluded.unit_amount,
		   interval = excluded.interval,
		   interval_count = excluded.interval_count,
		   trial_period_days = excluded.trial_period_days,
		   metadata = excluded.metadata`,
		p.ID, p.ProductID, boolToInt(p.Active), p.Description, p.Currency, p.Type,
		p.UnitAmount, p.Interval, p.IntervalCount, p.TrialPeriodDays, metadata,
	)
	if err != nil {
		return fmt.Errorf("upsert price: %w", err)
	}
	return nil
}

func (s *PriceStore) GetByID(id string) (*model.Price, error) {
	row := s.db.QueryRow(`SELECT `+priceCols+` FROM prices WHERE id = ?`, id)
	p, err := scanPrice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get price: %w", err)
	}
	return p, nil
}

// ListActive returns active prices grouped by product, cheapest first.
func (s *PriceStore) ListActive() ([]model.Price, error) {
	rows, err := s.db.Query(`SELECT ` + priceCols + ` FROM prices WHERE active = 1 ORDER BY product_id, unit_amount, id`)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	defer rows.Close()

	var prices []model.Price
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices = append(prices, *p)
	}
	return prices, rows.Err()
}
