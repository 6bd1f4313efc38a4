package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/fitcoach/internal/model"
)

type ProgramStore struct {
	db *sql.DB
}

func NewProgramStore(db *sql.DB) *ProgramStore {
	return &ProgramStore{db: db}
}

func scanProgram(scanner interface{ Scan(...any) error }) (*model.Program, error) {
	var p model.Program
	var price sql.NullFloat64
	err := scanner.Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.Level, &p.DurationWeeks, &price, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		p.PriceMonthly = &price.Float64
	}
	return &p, nil
}

const programCols = `id, title, description, image_url, level, duration_weeks, price_monthly, created_at`

func (s *ProgramStore) Create(p model.Program) (*model.Program, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO programs (id, title, description, image_url, level, duration_weeks, price_monthly)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.Title, p.Description, p.ImageURL, p.Level, p.DurationWeeks, p.PriceMonthly,
	)
	if err != nil {
		return nil, fmt.Errorf("insert program: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProgramStore) GetByID(id string) (*model.Program, error) {
	row := s.db.QueryRow(`SELECT `+programCols+` FROM programs WHERE id = ?`, id)
	p, err := scanProgram(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}
	return p, nil
}

// List returns all programs, newest first.
func (s *ProgramStore) List() ([]model.Program, error) {
	rows, err := s.db.Query(`SELECT ` + programCols + ` FROM programs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var programs []model.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		programs = append(programs, *p)
	}
	return programs, rows.Err()
}

// Update overwrites every editable field. It returns nil when no such program exists.
func (s *ProgramStore) Update(id string, p model.Program) (*model.Program, error) {
	_, err := s.db.Exec(
		`UPDATE programs SET title = ?, description = ?, image_url = ?, level = ?, duration_weeks = ?, price_monthly = ?
		 WHERE id = ?`,
		p.Title, p.Description, p.ImageURL, p.Level, p.DurationWeeks, p.PriceMonthly, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update program: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the program and reports whether a row was deleted.
func (s *ProgramStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM programs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete program: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *ProgramStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM programs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count programs: %w", err)
	}
	return n, nil
}
