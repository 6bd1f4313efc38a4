package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/fitcoach/internal/model"
)

// ScheduleStore manages program_workouts, the week/day placement of workouts
// inside a program.
type ScheduleStore struct {
	db *sql.DB
}

func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

const scheduleJoinCols = `pw.id, pw.program_id, pw.workout_id, pw.week_number, pw.day_number, pw.created_at,
	w.id, w.title, w.description, w.video_url, w.duration_minutes, w.difficulty, w.category, w.created_at`

func scanScheduleEntry(scanner interface{ Scan(...any) error }) (*model.ProgramWorkout, error) {
	var pw model.ProgramWorkout
	var w model.Workout
	err := scanner.Scan(
		&pw.ID, &pw.ProgramID, &pw.WorkoutID, &pw.WeekNumber, &pw.DayNumber, &pw.CreatedAt,
		&w.ID, &w.Title, &w.Description, &w.VideoURL, &w.DurationMinutes, &w.Difficulty, &w.Category, &w.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	pw.Workout = &w
	return &pw, nil
}

// Add schedules a workout. The returned entry has its workout joined.
func (s *ScheduleStore) Add(programID, workoutID string, week, day int) (*model.ProgramWorkout, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO program_workouts (id, program_id, workout_id, week_number, day_number) VALUES (?, ?, ?, ?, ?)`,
		id, programID, workoutID, week, day,
	)
	if err != nil {
		return nil, fmt.Errorf("insert program workout: %w", err)
	}
	return s.GetByID(id)
}

func (s *ScheduleStore) GetByID(id string) (*model.ProgramWorkout, error) {
	row := s.db.QueryRow(
		`SELECT `+scheduleJoinCols+` FROM program_workouts pw JOIN workouts w ON w.id = pw.workout_id WHERE pw.id = ?`,
		id,
	)
	pw, err := scanScheduleEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get program workout: %w", err)
	}
	return pw, nil
}

// ListByProgram returns a program's schedule ordered by week then day.
func (s *ScheduleStore) ListByProgram(programID string) ([]model.ProgramWorkout, error) {
	rows, err := s.db.Query(
		`SELECT `+scheduleJoinCols+` FROM program_workouts pw JOIN workouts w ON w.id = pw.workout_id
		 WHERE pw.program_id = ? ORDER BY pw.week_number, pw.day_number, pw.created_at`,
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("list program workouts: %w", err)
	}
	defer rows.Close()

	var entries []model.ProgramWorkout
	for rows.Next() {
		pw, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan program workout: %w", err)
		}
		entries = append(entries, *pw)
	}
	return entries, rows.Err()
}

func (s *ScheduleStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM program_workouts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete program workout: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
