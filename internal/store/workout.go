package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/fitcoach/internal/model"
)

type WorkoutStore struct {
	db *sql.DB
}

func NewWorkoutStore(db *sql.DB) *WorkoutStore {
	return &WorkoutStore{db: db}
}

func scanWorkout(scanner interface{ Scan(...any) error }) (*model.Workout, error) {
	var w model.Workout
	err := scanner.Scan(&w.ID, &w.Title, &w.Description, &w.VideoURL, &w.DurationMinutes, &w.Difficulty, &w.Category, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

const workoutCols = `id, title, description, video_url, duration_minutes, difficulty, category, created_at`

func (s *WorkoutStore) Create(w model.Workout) (*model.Workout, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO workouts (id, title, description, video_url, duration_minutes, difficulty, category)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, w.Title, w.Description, w.VideoURL, w.DurationMinutes, w.Difficulty, w.Category,
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}
	return s.GetByID(id)
}

func (s *WorkoutStore) GetByID(id string) (*model.Workout, error) {
	row := s.db.QueryRow(`SELECT `+workoutCols+` FROM workouts WHERE id = ?`, id)
	w, err := scanWorkout(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return w, nil
}

// List returns all workouts, newest first.
func (s *WorkoutStore) List() ([]model.Workout, error) {
	rows, err := s.db.Query(`SELECT ` + workoutCols + ` FROM workouts ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []model.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

func (s *WorkoutStore) Update(id string, w model.Workout) (*model.Workout, error) {
	_, err := s.db.Exec(
		`UPDATE workouts SET title = ?, description = ?, video_url = ?, duration_minutes = ?, difficulty = ?, category = ?
		 WHERE id = ?`,
		w.Title, w.Description, w.VideoURL, w.DurationMinutes, w.Difficulty, w.Category, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update workout: %w", err)
	}
	return s.GetByID(id)
}

func (s *WorkoutStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete workout: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *WorkoutStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM workouts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count workouts: %w", err)
	}
	return n, nil
}
