package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/repositories"
	"github.com/mustafa2080/tourism-API/internal/utils"
)

const uploadURLTTL = 300

type uploadRule struct {
	ext     string
	maxSize int64
}

var uploadRules = map[string]uploadRule{
	"image/jpeg": {ext: "jpg", maxSize: 10 << 20},
	"image/png":  {ext: "png", maxSize: 10 << 20},
	"image/webp": {ext: "webp", maxSize: 10 << 20},
	"image/gif":  {ext: "gif", maxSize: 5 << 20},
}

func allowedContentTypes() string {
	types := make([]string, 0, len(uploadRules))
	for t := range uploadRules {
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}

// UploadService hands out direct-upload targets and records their confirmation.
type UploadService struct {
	DB    *sql.DB
	Env   intconfig.Env
	Audit AuditLogger
	Now   func() time.Time
}

func (s UploadService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s UploadService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s UploadService) uploads() repositories.UploadRepository {
	return repositories.UploadRepository{DB: s.db()}
}

func (s UploadService) fileURL(key string) string {
	if s.Env.S3Bucket != "" {
		region := utils.SafeOr(s.Env.S3Region, "us-east-1")
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Env.S3Bucket, region, key)
	}
	return strings.TrimRight(s.Env.UploadBaseURL, "/") + "/uploads/" + key
}

func (s UploadService) Sign(ctx context.Context, actor domain.RequestContext, req models.UploadRequest) (models.SignedUpload, error) {
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	rule, ok := uploadRules[contentType]
	if !ok {
		return models.SignedUpload{}, domain.ValidationError{
			Field: "contentType",
			Msg:   "Invalid file type. Allowed: " + allowedContentTypes(),
		}
	}
	suffix, err := utils.RandomHex(8)
	if err != nil {
		return models.SignedUpload{}, domain.InternalError{Msg: "failed to generate file name", Err: err}
	}
	filename := fmt.Sprintf("%s-%d-%s.%s", utils.SanitizeFilename(req.Filename), s.now().UnixMilli(), suffix, rule.ext)

	u := models.Upload{
		ID:          uuid.NewString(),
		UserID:      actor.UserID,
		ContentType: contentType,
		Status:      models.UploadPending,
	}
	if req.TripID != "" {
		tripID := req.TripID
		u.TripID = &tripID
		u.Key = "trips/" + tripID + "/" + filename
	} else {
		u.Key = "uploads/" + actor.UserID + "/" + filename
	}
	if err := s.uploads().Create(ctx, &u); err != nil {
		return models.SignedUpload{}, err
	}

	return models.SignedUpload{
		UploadURL:   strings.TrimRight(s.Env.UploadBaseURL, "/") + "/api/v1/uploads/mock/" + u.ID,
		FileURL:     s.fileURL(u.Key),
		Key:         u.Key,
		UploadID:    u.ID,
		ExpiresIn:   uploadURLTTL,
		MaxSize:     rule.maxSize,
		ContentType: contentType,
	}, nil
}

func (s UploadService) Confirm(ctx context.Context, actor domain.RequestContext, uploadID, key string) (models.UploadConfirmation, error) {
	u, err := s.uploads().Confirm(ctx, uploadID, s.now())
	if err != nil {
		return models.UploadConfirmation{}, err
	}
	if key == "" {
		key = u.Key
	}
	if s.Audit != nil {
		s.Audit.LogAction(ctx, models.AuditEntry{
			ActorID:    actor.UserID,
			Action:     models.AuditImageUploaded,
			TargetType: models.TargetUpload,
			TargetID:   u.ID,
			Metadata:   map[string]any{"key": key, "contentType": u.ContentType},
		})
	}
	return models.UploadConfirmation{Success: true, Key: key, UploadID: u.ID}, nil
}
