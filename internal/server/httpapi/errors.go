package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/skillhub/internal/common"
)

// errorMapping ties a sentinel error to its HTTP rendering.
type errorMapping struct {
	target error
	status int
	code   string
}

// defaultMappings is checked in order; the first errors.Is match wins.
var defaultMappings = []errorMapping{
	{common.ErrRefreshTokenExpired, http.StatusUnauthorized, "refresh_token_expired"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "access_token_expired"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{common.ErrInvalidTokenConfiguration, http.StatusForbidden, "invalid_token_configuration"},
	{common.ErrAccountInactive, http.StatusForbidden, "account_inactive"},
	{common.ErrorForbidden, http.StatusForbidden, "forbidden"},
	{common.ErrTokenNotFound, http.StatusNotFound, "token_not_found"},
	{common.ErrorNotFound, http.StatusNotFound, "not_found"},
	{common.ErrSessionConflict, http.StatusConflict, "session_conflict"},
	{common.ErrAlreadyExists, http.StatusConflict, "already_exists"},
	{common.ErrorValidation, http.StatusBadRequest, "invalid_request"},
}

// verifyMappings reports a malformed token as a bad request rather than a
// permission problem.
var verifyMappings = []errorMapping{
	{common.ErrInvalidTokenConfiguration, http.StatusBadRequest, "invalid_token_configuration"},
}

// classify finds the mapping for err, consulting overrides first.
// ok is false for errors nobody expects; those render as 500.
func classify(err error, overrides ...errorMapping) (m errorMapping, ok bool) {
	for _, table := range [][]errorMapping{overrides, defaultMappings} {
		for _, m := range table {
			if errors.Is(err, m.target) {
				return m, true
			}
		}
	}
	return errorMapping{status: http.StatusInternalServerError, code: "internal"}, false
}

// clientMessage is the text shown to clients. Validation errors carry their
// detail; for other sentinels the wrapping context stays server-side.
func (m errorMapping) clientMessage(err error) string {
	if errors.Is(m.target, common.ErrorValidation) {
		return err.Error()
	}
	return m.target.Error()
}
