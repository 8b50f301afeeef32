package db

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/mustafa2080/tourism-API/internal/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

func pqCode(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

func IsUniqueViolation(err error) bool {
	pqErr, ok := pqCode(err)
	return ok && string(pqErr.Code) == codeUniqueViolation
}

// MapError translates driver errors into domain errors; resource names the
// entity for not-found messages. Unknown errors are returned unchanged.
func MapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	pqErr, ok := pqCode(err)
	if !ok {
		return err
	}
	switch string(pqErr.Code) {
	case codeUniqueViolation:
		return domain.ConflictError{Resource: uniqueField(pqErr), Err: err}
	case codeForeignKeyViolation:
		return domain.ValidationError{Msg: "Invalid reference - related record not found", Err: err}
	case codeCheckViolation:
		return domain.ValidationError{Msg: "Constraint violated: " + pqErr.Constraint, Err: err}
	case codeInvalidText:
		return domain.ValidationError{Msg: "Invalid identifier", Err: err}
	}
	return err
}

// uniqueField derives "email" from constraints named like users_email_key.
func uniqueField(e *pq.Error) string {
	c := e.Constraint
	if c == "" {
		return "field"
	}
	c = strings.TrimSuffix(c, "_key")
	if i := strings.Index(c, "_"); i >= 0 && i < len(c)-1 {
		c = c[i+1:]
	}
	return c
}
