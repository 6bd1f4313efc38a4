package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/fitcoach/internal/model"
)

type PricingPlanStore struct {
	db *sql.DB
}

func NewPricingPlanStore(db *sql.DB) *PricingPlanStore {
	return &PricingPlanStore{db: db}
}

func scanPricingPlan(scanner interface{ Scan(...any) error }) (*model.PricingPlan, error) {
	var p model.PricingPlan
	var features string
	var popular int
	err := scanner.Scan(&p.ID, &p.Name, &p.Price, &p.Period, &p.Description, &features, &p.PriceID, &popular, &p.OrderIndex, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Popular = popular != 0
	if err := json.Unmarshal([]byte(features), &p.Features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return &p, nil
}

const pricingPlanCols = `id, name, price, period, description, features, price_id, popular, order_index, created_at`

func (s *PricingPlanStore) Create(p model.PricingPlan) (*model.PricingPlan, error) {
	features, err := encodeFeatures(p.Features)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO pricing_plans (id, name, price, period, description, features, price_id, popular, order_index)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Name, p.Price, p.Period, p.Description, features, p.PriceID, boolToInt(p.Popular), p.OrderIndex,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pricing plan: %w", err)
	}
	return s.GetByID(id)
}

func (s *PricingPlanStore) GetByID(id string) (*model.PricingPlan, error) {
	row := s.db.QueryRow(`SELECT `+pricingPlanCols+` FROM pricing_plans WHERE id = ?`, id)
	p, err := scanPricingPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pricing plan: %w", err)
	}
	return p, nil
}

// List returns plans in display order.
func (s *PricingPlanStore) List() ([]model.PricingPlan, error) {
	rows, err := s.db.Query(`SELECT ` + pricingPlanCols + ` FROM pricing_plans ORDER BY order_index, created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list pricing plans: %w", err)
	}
	defer rows.Close()

	var plans []model.PricingPlan
	for rows.Next() {
		p, err := scanPricingPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pricing plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (s *PricingPlanStore) Update(id string, p model.PricingPlan) (*model.PricingPlan, error) {
	features, err := encodeFeatures(p.Features)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`UPDATE pricing_plans SET name = ?, price = ?, period = ?, description = ?, features = ?, price_id = ?, popular = ?, order_index = ?
		 WHERE id = ?`,
		p.Name, p.Price, p.Period, p.Description, features, p.PriceID, boolToInt(p.Popular), p.OrderIndex, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update pricing plan: %w", err)
	}
	return s.GetByID(id)
}

func (s *PricingPlanStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM pricing_plans WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete pricing plan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func encodeFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	return encodeJSON(features)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
