package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/fitcoach/internal/model"
)

type ProgressStore struct {
	db *sql.DB
}

func NewProgressStore(db *sql.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

func scanProgressLog(scanner interface{ Scan(...any) error }) (*model.ProgressLog, error) {
	var l model.ProgressLog
	var bodyFat sql.NullFloat64
	err := scanner.Scan(&l.ID, &l.UserID, &l.Date, &l.Weight, &bodyFat, &l.Notes, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if bodyFat.Valid {
		l.BodyFatPercentage = &bodyFat.Float64
	}
	return &l, nil
}

const progressCols = `id, user_id, date, weight, body_fat_percentage, notes, created_at`

func (s *ProgressStore) Create(l model.ProgressLog) (*model.ProgressLog, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO user_progress (id, user_id, date, weight, body_fat_percentage, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		id, l.UserID, l.Date, l.Weight, l.BodyFatPercentage, l.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert progress log: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+progressCols+` FROM user_progress WHERE id = ?`, id)
	return scanProgressLog(row)
}

// ListByUser returns a user's logs in date order, oldest first.
func (s *ProgressStore) ListByUser(userID string) ([]model.ProgressLog, error) {
	rows, err := s.db.Query(
		`SELECT `+progressCols+` FROM user_progress WHERE user_id = ? ORDER BY date, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list progress logs: %w", err)
	}
	defer rows.Close()

	var logs []model.ProgressLog
	for rows.Next() {
		l, err := scanProgressLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// DeleteForUser removes a log only if it belongs to userID.
func (s *ProgressStore) DeleteForUser(id, userID string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM user_progress WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete progress log: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
