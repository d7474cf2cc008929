package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"modelcatalog/internal/manager"
	"modelcatalog/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeErrorResponse(w, types.ErrorResponse{Error: msg, Code: status})
}

func writeErrorResponse(w http.ResponseWriter, resp types.ErrorResponse) {
	httpErrorsTotal.WithLabelValues(itoa(resp.Code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeError maps a service error onto the JSON error payload.
func writeError(w http.ResponseWriter, err error) {
	resp := types.ErrorResponse{Error: err.Error(), Code: statusFor(err)}
	if resp.Code == http.StatusBadGateway || resp.Code == http.StatusNotFound {
		resp.UpstreamStatus = manager.UpstreamStatus(err)
	}
	for _, f := range manager.ValidationFields(err) {
		resp.Fields = append(resp.Fields, types.FieldError{Field: f.Field, Message: f.Message})
	}
	writeErrorResponse(w, resp)
}

func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case manager.IsValidation(err):
		return http.StatusBadRequest
	case manager.IsUnknownInstanceType(err):
		return http.StatusUnprocessableEntity
	case manager.IsNotFound(err):
		return http.StatusNotFound
	case manager.IsUpstreamUnavailable(err), manager.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	case manager.IsUpstreamRejected(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
