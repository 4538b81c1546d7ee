// Package httputil centralizes JSON response writing so every handler emits
// the same envelopes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/sentinel"
)

// ErrorResponse is the error envelope for every non-2xx response.
//
// Details carries the underlying cause for operators; Code carries the
// storage SQLSTATE when the failure originated in a constraint; Hint tells
// the caller whether a retry is safe. EmailNotVerified flags the one policy
// failure the admin UI treats specially.
type ErrorResponse struct {
	Error            string `json:"error"`
	Details          string `json:"details,omitempty"`
	EmailNotVerified bool   `json:"emailNotVerified,omitempty"`
	Code             string `json:"code,omitempty"`
	Hint             string `json:"hint,omitempty"`
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the error envelope. Unknown
// errors are reported as internal without leaking their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	resp := ErrorResponse{Error: dErrors.MessageOf(err)}
	if resp.Error == "" {
		resp.Error = string(dErrors.CodeInternal)
	}

	switch code {
	case dErrors.CodeEmailNotVerified:
		resp.EmailNotVerified = true
	case dErrors.CodeInternal, dErrors.CodeIntegrity:
		if cause := errors.Unwrap(err); cause != nil {
			resp.Details = cause.Error()
		}
		resp.Code = sentinel.SQLState(err)
		resp.Hint = "approval is safe to retry; completed steps resume idempotently"
	case dErrors.CodeValidation, dErrors.CodeInvalidReference:
		if cause := errors.Unwrap(err); cause != nil {
			resp.Details = cause.Error()
		}
	}

	WriteJSON(w, status, resp)
}
