package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/fitcoach/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var name, email, programID sql.NullString
	err := scanner.Scan(&u.ID, &name, &email, &u.Role, &programID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if name.Valid {
		u.Name = &name.String
	}
	if email.Valid {
		u.Email = &email.String
	}
	if programID.Valid {
		u.CurrentProgramID = &programID.String
	}
	return &u, nil
}

const userCols = `id, name, email, role, current_program_id, created_at`

// Ensure returns the user with the given identity id, creating it as a student
// on first sight. An existing row is never modified.
func (s *UserStore) Ensure(id, email string) (*model.User, error) {
	var emailArg any
	if email != "" {
		emailArg = email
	}
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, role) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`,
		id, emailArg, model.RoleStudent,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) ListByRole(role string) ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT `+userCols+` FROM users WHERE role = ? ORDER BY created_at DESC, id`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) CountByRole(role string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = ?`, role).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *UserStore) UpdateName(id, name string) (*model.User, error) {
	_, err := s.db.Exec(`UPDATE users SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("update user name: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) SetRole(id, role string) error {
	_, err := s.db.Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	return nil
}

// SetCurrentProgram points the user at a program. A nil programID clears it.
func (s *UserStore) SetCurrentProgram(id string, programID *string) error {
	_, err := s.db.Exec(`UPDATE users SET current_program_id = ? WHERE id = ?`, programID, id)
	if err != nil {
		return fmt.Errorf("set current program: %w", err)
	}
	return nil
}
