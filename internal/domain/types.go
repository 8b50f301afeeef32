package domain

import (
	"context"
	"math"
)

// Role of an authenticated user.
type Role string

const (
	RoleUser    Role = "USER"
	RoleAdmin   Role = "ADMIN"
	RoleSupport Role = "SUPPORT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSupport:
		return true
	}
	return false
}

// PageParams carries paging input; Limit is capped at MaxPageLimit.
type PageParams struct {
	Page  int
	Limit int
}

const MaxPageLimit = 50

// Normalize fills defaults and clamps out-of-range values.
func (p PageParams) Normalize(defaultLimit int) PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Pagination is the paging block of list responses.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func NewPagination(p PageParams, totalItems int) Pagination {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(p.Limit)))
	}
	return Pagination{
		Page:        p.Page,
		Limit:       p.Limit,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNextPage: p.Page < totalPages,
		HasPrevPage: p.Page > 1,
	}
}

// RequestContext carries authenticated user and request origin info when available.
type RequestContext struct {
	UserID    string `json:"userId"`
	Role      Role   `json:"role"`
	RequestID string `json:"requestId,omitempty"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

func (rc RequestContext) IsAdmin() bool { return rc.Role == RoleAdmin }

type requestContextKey struct{}

func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

func RequestContextFrom(ctx context.Context) RequestContext {
	if ctx == nil {
		return RequestContext{}
	}
	rc, _ := ctx.Value(requestContextKey{}).(RequestContext)
	return rc
}
