package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	intdb "github.com/mustafa2080/tourism-API/internal/db"
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type UserRepository struct {
	DB intdb.Querier
}

func (r UserRepository) db() intdb.Querier {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const userColumns = `id, name, email, phone, password_hash, role, is_active, profile_photo, created_at, updated_at`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &role, &u.IsActive, &u.ProfilePhoto, &u.CreatedAt, &u.UpdatedAt)
	u.Role = domain.Role(role)
	return u, err
}

func (r UserRepository) Create(ctx context.Context, u *models.User) error {
	err := r.db().QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, phone, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, u.ID, u.Name, strings.ToLower(u.Email), u.Phone, u.PasswordHash, string(u.Role), u.IsActive).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return intdb.MapError(err, "User")
	}
	u.Email = strings.ToLower(u.Email)
	return nil
}

func (r UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(r.db().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return models.User{}, intdb.MapError(err, "User")
	}
	return u, nil
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(r.db().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return models.User{}, intdb.MapError(err, "User")
	}
	return u, nil
}

func (r UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db().QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, strings.ToLower(strings.TrimSpace(email))).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.db().ExecContext(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireAffected(res, "User")
}

func requireAffected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
