package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStore reads and writes the users table directly; accounts are not
// part of the quiz core's Store interface.
type UserStore struct{ db *sql.DB }

func NewUserStore(db *sql.DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) Create(ctx context.Context, username, fullName, password, role string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	u := User{
		ID:        uuid.NewString(),
		Username:  username,
		FullName:  fullName,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO users (id,username,full_name,password_hash,role,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (username) DO NOTHING`,
		u.ID, u.Username, u.FullName, string(hash), u.Role, u.CreatedAt.UnixMilli())
	if err != nil {
		return User{}, err
	}
	// ON CONFLICT DO NOTHING hides the duplicate; verify our row won
	var gotID string
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE username=$1`, username).Scan(&gotID); err != nil {
		return User{}, err
	}
	if gotID != u.ID {
		return User{}, ErrUserExists
	}
	return u, nil
}

// Authenticate verifies the password and returns the stored user.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (User, error) {
	var u User
	var hash string
	var created int64
	err := s.db.QueryRowContext(ctx, `SELECT id,username,full_name,password_hash,role,created_at
		FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.FullName, &hash, &u.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	return u, nil
}

func (s *UserStore) List(ctx context.Context, role string) ([]User, error) {
	var rows *sql.Rows
	var err error
	if role == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT id,username,full_name,role,created_at FROM users ORDER BY username`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT id,username,full_name,role,created_at FROM users WHERE role=$1 ORDER BY username`, role)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		var created int64
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &created); err != nil {
			return nil, err
		}
		u.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, u)
	}
	return out, rows.Err()
}

// EnsureAdmin seeds the initial admin account if no admin exists yet.
func (s *UserStore) EnsureAdmin(ctx context.Context, username, password string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE role='admin'`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := s.Create(ctx, username, "Administrator", password, "admin"); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
