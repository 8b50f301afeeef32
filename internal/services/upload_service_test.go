package services

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

func TestSignUploadRejectsUnknownType(t *testing.T) {
	svc := UploadService{Env: intconfig.Env{UploadBaseURL: "http://localhost:5000"}}
	_, err := svc.Sign(context.Background(), owner(), models.UploadRequest{Filename: "doc.pdf", ContentType: "application/pdf"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "Invalid file type. Allowed: image/gif, image/jpeg, image/png, image/webp", err.Error())
}

func TestSignUploadForTrip(t *testing.T) {
	db, mock := newMockDB(t)
	svc := UploadService{DB: db, Env: intconfig.Env{UploadBaseURL: "http://localhost:5000/"}, Now: func() time.Time { return fixedNow }}

	mock.ExpectQuery("INSERT INTO uploads").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), testUserID, testTripID, "image/gif", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(fixedNow))

	out, err := svc.Sign(context.Background(), owner(), models.UploadRequest{Filename: "Sun set!.GIF", ContentType: "IMAGE/GIF", TripID: testTripID})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Key, "trips/"+testTripID+"/"))
	assert.True(t, strings.HasSuffix(out.Key, ".gif"))
	assert.Contains(t, out.Key, "-"+strconvMillis(fixedNow)+"-")
	assert.Equal(t, int64(5<<20), out.MaxSize)
	assert.Equal(t, 300, out.ExpiresIn)
	assert.Equal(t, "http://localhost:5000/api/v1/uploads/mock/"+out.UploadID, out.UploadURL)
	assert.Equal(t, "http://localhost:5000/uploads/"+out.Key, out.FileURL)
}

func TestSignUploadUsesBucketURL(t *testing.T) {
	db, mock := newMockDB(t)
	svc := UploadService{DB: db, Env: intconfig.Env{UploadBaseURL: "http://api", S3Bucket: "tour-media", S3Region: "eu-west-1"}}

	mock.ExpectQuery("INSERT INTO uploads").WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(fixedNow))
	out, err := svc.Sign(context.Background(), owner(), models.UploadRequest{Filename: "a.png", ContentType: "image/png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Key, "uploads/"+testUserID+"/"))
	assert.Equal(t, "https://tour-media.s3.eu-west-1.amazonaws.com/"+out.Key, out.FileURL)
	assert.Equal(t, int64(10<<20), out.MaxSize)
}

func TestConfirmUpload(t *testing.T) {
	db, mock := newMockDB(t)
	audit := &recordingAudit{}
	svc := UploadService{DB: db, Audit: audit, Now: func() time.Time { return fixedNow }}

	mock.ExpectQuery("UPDATE uploads").WithArgs("up-1", "CONFIRMED", fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "user_id", "content_type", "status", "created_at"}).
			AddRow("up-1", "uploads/u/a.png", testUserID, "image/png", "CONFIRMED", fixedNow))
	out, err := svc.Confirm(context.Background(), owner(), "up-1", "")
	require.NoError(t, err)
	assert.Equal(t, models.UploadConfirmation{Success: true, Key: "uploads/u/a.png", UploadID: "up-1"}, out)
	assert.Equal(t, []models.AuditAction{models.AuditImageUploaded}, audit.actions())

	mock.ExpectQuery("UPDATE uploads").WillReturnRows(sqlmock.NewRows([]string{"id", "key", "user_id", "content_type", "status", "created_at"}))
	_, err = svc.Confirm(context.Background(), owner(), "missing", "k")
	assert.True(t, domain.IsNotFound(err))
}

func strconvMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
