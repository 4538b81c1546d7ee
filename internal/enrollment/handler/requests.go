package handler

import (
	"encoding/json"
	"io"
	"net/http"

	dErrors "academy/pkg/domain-errors"
)

// approveRequest is the optional body of the approve endpoint. The admin
// identity defaults to the authenticated actor when absent.
type approveRequest struct {
	ApprovedBy string `json:"approvedBy"`
}

// rejectRequest is the optional body of the reject endpoint.
type rejectRequest struct {
	RejectedReason string `json:"rejectedReason"`
}

// passwordSetupRequest completes first-time password setup.
type passwordSetupRequest struct {
	ProfileID string `json:"profileId"`
	Password  string `json:"password"`
}

// decodeOptional decodes a JSON body into v, treating an empty body as valid.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || err == io.EOF {
		return nil
	}
	return dErrors.Wrap(err, dErrors.CodeValidation, "request body is not valid JSON")
}

// decode decodes a required JSON body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "request body is not valid JSON")
	}
	return nil
}
