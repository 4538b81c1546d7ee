package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/sentinel"
)

func writeAndDecode(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	WriteError(rec, err)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func Test_WriteError_EmailNotVerified(t *testing.T) {
	status, resp := writeAndDecode(t, dErrors.New(dErrors.CodeEmailNotVerified, "email address has not been verified"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.True(t, resp.EmailNotVerified)
	assert.Equal(t, "email address has not been verified", resp.Error)
}

func Test_WriteError_StorageFailureCarriesDiagnostics(t *testing.T) {
	violation := sentinel.NewViolation(sentinel.ErrUniqueViolation, "profiles_email_key", sentinel.SQLStateUniqueViolation)
	err := dErrors.Wrap(violation, dErrors.CodeInternal, "failed to create profile")

	status, resp := writeAndDecode(t, err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, sentinel.SQLStateUniqueViolation, resp.Code)
	assert.Contains(t, resp.Details, "profiles_email_key")
	assert.Contains(t, resp.Hint, "safe to retry")
}

func Test_WriteError_UnknownErrorDoesNotLeak(t *testing.T) {
	status, resp := writeAndDecode(t, errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, string(dErrors.CodeInternal), resp.Error)
}

func Test_WriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]bool{"success": true})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}
