package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/fitcoach/internal/model"
)

// ProductStore mirrors the Stripe product catalog.
type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

func scanProduct(scanner interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	var active int
	var image sql.NullString
	var metadata string
	if err := scanner.Scan(&p.ID, &active, &p.Name, &p.Description, &image, &metadata); err != nil {
		return nil, err
	}
	p.Active = active != 0
	if image.Valid {
		p.Image = &image.String
	}
	m, err := decodeMetadata(metadata)
	if err != nil {
		return nil, err
	}
	p.Metadata = m
	return &p, nil
}

const productCols = `id, active, name, description, image, metadata`

// Upsert writes the product keyed by its Stripe id, replacing every column.
func (s *ProductStore) Upsert(p model.Product) error {
	metadata, err := encodeMetadata(p.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO products (id, active, name, description, image, metadata) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   active = excluded.active,
		   name = excluded.name,
		   description = excluded.description,
		   image = excluded.image,
		   metadata = excluded.metadata`,
		p.ID, boolToInt(p.Active), p.Name, p.Description, p.Image, metadata,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (s *ProductStore) GetByID(id string) (*model.Product, error) {
	row := s.db.QueryRow(`SELECT `+productCols+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) ListActive() ([]model.Product, error) {
	rows, err := s.db.Query(`SELECT ` + productCols + ` FROM products WHERE active = 1 ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
