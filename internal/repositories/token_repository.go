package repositories

import (
	"context"
	"fmt"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	intdb "github.com/mustafa2080/tourism-API/internal/db"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

type TokenRepository struct {
	DB intdb.Querier
}

func (r TokenRepository) db() intdb.Querier {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r TokenRepository) CreateRefresh(ctx context.Context, t *models.RefreshToken) error {
	err := r.db().QueryRowContext(ctx, `
		INSERT INTO refresh_tokens (id, token, user_id, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, t.ID, t.Token, t.UserID, t.ExpiresAt).Scan(&t.CreatedAt)
	if err != nil {
		return intdb.MapError(err, "Refresh token")
	}
	return nil
}

func (r TokenRepository) GetRefresh(ctx context.Context, token string) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.db().QueryRowContext(ctx, `
		SELECT id, token, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`, token).Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return t, intdb.MapError(err, "Refresh token")
	}
	return t, nil
}

// DeleteRefresh removes a single token. Missing tokens are not an error.
func (r TokenRepository) DeleteRefresh(ctx context.Context, token string) error {
	if _, err := r.db().ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (r TokenRepository) DeleteRefreshForUser(ctx context.Context, userID string) error {
	if _, err := r.db().ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

func (r TokenRepository) CreateReset(ctx context.Context, p *models.PasswordReset) error {
	err := r.db().QueryRowContext(ctx, `
		INSERT INTO password_resets (id, email, token, expires_at, used)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING created_at
	`, p.ID, p.Email, p.Token, p.ExpiresAt).Scan(&p.CreatedAt)
	if err != nil {
		return intdb.MapError(err, "Password reset")
	}
	return nil
}

func (r TokenRepository) DeleteResetsForEmail(ctx context.Context, email string) error {
	if _, err := r.db().ExecContext(ctx, `DELETE FROM password_resets WHERE email = $1`, email); err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	return nil
}

func (r TokenRepository) GetReset(ctx context.Context, token string) (models.PasswordReset, error) {
	var p models.PasswordReset
	err := r.db().QueryRowContext(ctx, `
		SELECT id, email, token, expires_at, used, created_at
		FROM password_resets
		WHERE token = $1
	`, token).Scan(&p.ID, &p.Email, &p.Token, &p.ExpiresAt, &p.Used, &p.CreatedAt)
	if err != nil {
		return p, intdb.MapError(err, "Password reset")
	}
	return p, nil
}

func (r TokenRepository) MarkResetUsed(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `UPDATE password_resets SET used = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	return requireAffected(res, "Password reset")
}
