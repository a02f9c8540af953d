package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/w4/soncon/internal/apperrors"
)

// ErrorBody is the serialized error payload.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an error body.
// Format: {"error": {"code": "DEVICE_UNREACHABLE", "message": "..."}}
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ListResponse is the list envelope for collection endpoints.
type ListResponse struct {
	Object string `json:"object"`
	Data   any    `json:"data"`
	URL    string `json:"url"`
}

// WriteJSON sends a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// WriteList writes a list response for a collection endpoint.
func WriteList(w http.ResponseWriter, url string, data any) error {
	return WriteJSON(w, http.StatusOK, ListResponse{Object: "list", Data: data, URL: url})
}

// WriteError maps a protocol-layer error onto an HTTP status and body.
// Each taxonomy category keeps its own code so API consumers can
// special-case, mirroring what library callers do with errors.As.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := ErrorBody{Code: "INTERNAL_ERROR", Message: err.Error()}

	var validationErr *apperrors.ValidationError
	var notFoundErr *apperrors.DeviceNotFoundError
	var unreachableErr *apperrors.UnreachableError
	var badResponseErr *apperrors.BadResponseError
	var parseErr *apperrors.ParseError
	var faultErr *apperrors.FaultError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		body.Code = "VALIDATION_ERROR"
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
		body.Code = "DEVICE_NOT_FOUND"
	case errors.As(err, &unreachableErr):
		status = http.StatusBadGateway
		body.Code = "DEVICE_UNREACHABLE"
	case errors.As(err, &badResponseErr):
		status = http.StatusBadGateway
		body.Code = "DEVICE_BAD_RESPONSE"
	case errors.As(err, &parseErr):
		status = http.StatusBadGateway
		body.Code = "DEVICE_PARSE_ERROR"
	case errors.As(err, &faultErr):
		status = http.StatusBadGateway
		body.Code = "SONOS_REJECTED"
	}

	_ = WriteJSON(w, status, ErrorResponse{Error: body})
}
