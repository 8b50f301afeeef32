package domain

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name   string
		params PageParams
		total  int
		want   Pagination
	}{
		{"empty", PageParams{Page: 1, Limit: 10}, 0, Pagination{Page: 1, Limit: 10}},
		{"exact pages", PageParams{Page: 1, Limit: 10}, 20, Pagination{Page: 1, Limit: 10, TotalItems: 20, TotalPages: 2, HasNextPage: true}},
		{"partial last page", PageParams{Page: 3, Limit: 10}, 21, Pagination{Page: 3, Limit: 10, TotalItems: 21, TotalPages: 3, HasPrevPage: true}},
		{"middle", PageParams{Page: 2, Limit: 5}, 11, Pagination{Page: 2, Limit: 5, TotalItems: 11, TotalPages: 3, HasNextPage: true, HasPrevPage: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.params, tt.total))
		})
	}
}

func TestPageParamsNormalize(t *testing.T) {
	p := PageParams{}.Normalize(10)
	assert.Equal(t, PageParams{Page: 1, Limit: 10}, p)
	assert.Equal(t, 0, p.Offset())

	p = PageParams{Page: 3, Limit: 500}.Normalize(10)
	assert.Equal(t, MaxPageLimit, p.Limit)
	assert.Equal(t, 100, p.Offset())
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create booking: %w", ValidationError{Msg: "Only 0 seats available"})
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "create booking: Only 0 seats available", err.Error())

	assert.True(t, IsForbidden(ForbiddenError{}))
	assert.True(t, IsUnauthorized(fmt.Errorf("x: %w", UnauthorizedError{Msg: "Token expired"})))
	assert.Equal(t, "Trip not found", NotFoundError{Resource: "Trip"}.Error())
	assert.Equal(t, "email already exists", ConflictError{Resource: "email"}.Error())
}

func TestRequestContextRoundTrip(t *testing.T) {
	ctx := WithRequestContext(context.Background(), RequestContext{UserID: "u1", Role: RoleAdmin})
	rc := RequestContextFrom(ctx)
	assert.Equal(t, "u1", rc.UserID)
	assert.True(t, rc.IsAdmin())
	assert.Equal(t, RequestContext{}, RequestContextFrom(context.Background()))
}
