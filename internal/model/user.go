package model

import "time"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID               string    `json:"id"`
	Name             *string   `json:"name"`
	Email            *string   `json:"email"`
	Role             string    `json:"role"`
	CurrentProgramID *string   `json:"current_program_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// IsAdmin reports whether the user may use the back office.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type ProgressLog struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Date              string    `json:"date"`
	Weight            float64   `json:"weight"`
	BodyFatPercentage *float64  `json:"body_fat_percentage"`
	Notes             string    `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
}
