package repositories

import (
	"context"
	"fmt"
	"time"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	intdb "github.com/mustafa2080/tourism-API/internal/db"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

type UploadRepository struct {
	DB intdb.Querier
}

func (r UploadRepository) db() intdb.Querier {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r UploadRepository) Create(ctx context.Context, u *models.Upload) error {
	err := r.db().QueryRowContext(ctx, `
		INSERT INTO uploads (id, key, user_id, trip_id, content_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, u.ID, u.Key, u.UserID, u.TripID, u.ContentType, string(u.Status)).Scan(&u.CreatedAt)
	if err != nil {
		return intdb.MapError(err, "Upload")
	}
	return nil
}

// Confirm flags the upload as received and returns its stored row.
func (r UploadRepository) Confirm(ctx context.Context, id string, at time.Time) (models.Upload, error) {
	var (
		u      models.Upload
		status string
	)
	err := r.db().QueryRowContext(ctx, `
		UPDATE uploads SET status = $2, confirmed_at = $3
		WHERE id = $1
		RETURNING id, key, user_id, content_type, status, created_at
	`, id, string(models.UploadConfirmed), at).Scan(&u.ID, &u.Key, &u.UserID, &u.ContentType, &status, &u.CreatedAt)
	if err != nil {
		return u, intdb.MapError(err, "Upload")
	}
	u.Status = models.UploadStatus(status)
	u.ConfirmedAt = &at
	return u, nil
}

func (r UploadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return requireAffected(res, "Upload")
}
