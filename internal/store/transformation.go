package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/fitcoach/internal/model"
)

type TransformationStore struct {
	db *sql.DB
}

func NewTransformationStore(db *sql.DB) *TransformationStore {
	return &TransformationStore{db: db}
}

func scanTransformation(scanner interface{ Scan(...any) error }) (*model.Transformation, error) {
	var t model.Transformation
	err := scanner.Scan(&t.ID, &t.Name, &t.Achievement, &t.Quote, &t.Program, &t.ImageBeforeURL, &t.ImageAfterURL, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const transformationCols = `id, name, achievement, quote, program, image_before_url, image_after_url, created_at`

func (s *TransformationStore) Create(t model.Transformation) (*model.Transformation, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO transformations (id, name, achievement, quote, program, image_before_url, image_after_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, t.Name, t.Achievement, t.Quote, t.Program, t.ImageBeforeURL, t.ImageAfterURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transformation: %w", err)
	}
	return s.GetByID(id)
}

func (s *TransformationStore) GetByID(id string) (*model.Transformation, error) {
	row := s.db.QueryRow(`SELECT `+transformationCols+` FROM transformations WHERE id = ?`, id)
	t, err := scanTransformation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transformation: %w", err)
	}
	return t, nil
}

func (s *TransformationStore) List() ([]model.Transformation, error) {
	rows, err := s.db.Query(`SELECT ` + transformationCols + ` FROM transformations ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transformations: %w", err)
	}
	defer rows.Close()

	var out []model.Transformation
	for rows.Next() {
		t, err := scanTransformation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transformation: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *TransformationStore) Update(id string, t model.Transformation) (*model.Transformation, error) {
	_, err := s.db.Exec(
		`UPDATE transformations SET name = ?, achievement = ?, quote = ?, program = ?, image_before_url = ?, image_after_url = ?
		 WHERE id = ?`,
		t.Name, t.Achievement, t.Quote, t.Program, t.ImageBeforeURL, t.ImageAfterURL, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update transformation: %w", err)
	}
	return s.GetByID(id)
}

func (s *TransformationStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM transformations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete transformation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
