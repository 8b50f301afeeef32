package models

import "time"

type UploadStatus string

const (
	UploadPending   UploadStatus = "PENDING"
	UploadConfirmed UploadStatus = "CONFIRMED"
)

type Upload struct {
	ID          string
	Key         string
	UserID      string
	TripID      *string
	ContentType string
	Status      UploadStatus
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

type UploadRequest struct {
	Filename    string
	ContentType string
	TripID      string
}

type SignedUpload struct {
	UploadURL   string `json:"uploadUrl"`
	FileURL     string `json:"fileUrl"`
	Key         string `json:"key"`
	UploadID    string `json:"uploadId"`
	ExpiresIn   int    `json:"expiresIn"`
	MaxSize     int64  `json:"maxSize"`
	ContentType string `json:"contentType"`
}

type UploadConfirmation struct {
	Success  bool   `json:"success"`
	Key      string `json:"key"`
	UploadID string `json:"uploadId"`
}
