package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/example/turismo-portal/internal/domain/user"
)

const userColumns = "id, email, full_name, role, password_hash, is_active, created_at, updated_at"

// UserStore reads and writes the profiles table.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, email, full_name, role, password_hash, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, nullString(u.FullName), string(u.Role), u.PasswordHash, u.IsActive, u.CreatedAt, u.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return user.ErrEmailTaken
	}
	return err
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM profiles WHERE id = $1", id)
	return scanUser(row)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM profiles WHERE email = $1", email)
	return scanUser(row)
}

func (s *UserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET password_hash = $2, updated_at = $3 WHERE id = $1",
		id, passwordHash, time.Now())
	if err != nil {
		return err
	}
	return requireRow(res, user.ErrUserNotFound)
}

func scanUser(row *sql.Row) (*user.User, error) {
	var u user.User
	var fullName sql.NullString
	var role string
	err := row.Scan(&u.ID, &u.Email, &fullName, &role, &u.PasswordHash,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.FullName = fullName.String
	u.Role = user.Role(role)
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
