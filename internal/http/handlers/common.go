package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/utils"
)

type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       any                `json:"data"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondPage(c *gin.Context, message string, data any, p domain.Pagination) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data, Pagination: &p})
}

// bindJSON ensures the body is present, parsable and valid.
func bindJSON[T any](c *gin.Context, dst *T) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondDomainError(c, bindError(err))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		RespondDomainError(c, bindError(err))
		return false
	}
	return true
}

// uuidParam reads a path parameter that must be a UUID.
func uuidParam(c *gin.Context, name string) (string, bool) {
	raw := strings.TrimSpace(c.Param(name))
	if _, err := uuid.Parse(raw); err != nil {
		RespondDomainError(c, fieldError(name, name+" must be a valid UUID"))
		return "", false
	}
	return raw, true
}

func queryUUID(c *gin.Context, name string) (string, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return "", nil
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", fieldError(name, name+" must be a valid UUID")
	}
	return raw, nil
}

func pageParams(c *gin.Context) (domain.PageParams, error) {
	var p domain.PageParams
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, fieldError("page", "page must be a positive integer")
		}
		p.Page = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > domain.MaxPageLimit {
			return p, fieldError("limit", "limit must be between 1 and 50")
		}
		p.Limit = n
	}
	return p, nil
}

func queryFloat(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, fieldError(name, name+" must be a non-negative number")
	}
	return &v, nil
}

func queryInt(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, fieldError(name, name+" must be a non-negative integer")
	}
	return &v, nil
}

func queryDate(c *gin.Context, name string) (*time.Time, error) {
	t, err := utils.ParseOptionalDate(c.Query(name))
	if err != nil {
		return nil, fieldError(name, name+" must be an ISO8601 date")
	}
	return t, nil
}

func optionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := utils.ParseOptionalDate(*raw)
	if err != nil {
		return nil, fieldError(field, field+" must be an ISO8601 date")
	}
	return t, nil
}
