package model

import "time"

type Program struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	Level         string    `json:"level"`
	DurationWeeks int       `json:"duration_weeks"`
	PriceMonthly  *float64  `json:"price_monthly"`
	CreatedAt     time.Time `json:"created_at"`
}

type Workout struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	VideoURL        string    `json:"video_url"`
	DurationMinutes int       `json:"duration_minutes"`
	Difficulty      string    `json:"difficulty"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProgramWorkout places a workout on a given week and day of a program.
type ProgramWorkout struct {
	ID         string    `json:"id"`
	ProgramID  string    `json:"program_id"`
	WorkoutID  string    `json:"workout_id"`
	WeekNumber int       `json:"week_number"`
	DayNumber  int       `json:"day_number"`
	CreatedAt  time.Time `json:"created_at"`
	Workout    *Workout  `json:"workout,omitempty"`
}
