// Package handler provides shared HTTP response helpers.
// Handlers translate domain errors to HTTP through a single mapping so
// callers see stable, machine-readable error codes.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/copperline/courier/internal/domain"
	"github.com/copperline/courier/internal/middleware"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse writes a structured JSON error and logs it with the
// request-scoped logger. Internal error details never reach the caller.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	// Field-level validation errors keep their field map.
	if fields := domain.GetValidationFields(err); fields != nil {
		logError(r, err, http.StatusBadRequest)
		JSON(w, http.StatusBadRequest, errorBody{
			Error: errorDetail{
				Code:    domain.EINVALID,
				Message: "Validation failed",
				Fields:  fields,
			},
		})
		return
	}

	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)
	logError(r, err, status)

	JSON(w, status, errorBody{
		Error: errorDetail{
			Code:    code,
			Message: domain.ErrorMessage(err),
		},
	})
}

func logError(r *http.Request, err error, status int) {
	logger := middleware.GetLogger(r.Context())

	attrs := []any{
		"error", err.Error(),
		"code", domain.ErrorCode(err),
		"status", status,
	}
	if op := domain.ErrorOp(err); op != "" {
		attrs = append(attrs, "op", op)
	}

	if status >= 500 {
		logger.Error("request failed", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized // 401
	case domain.EFORBIDDEN:
		return http.StatusForbidden // 403
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.ECONFLICT:
		return http.StatusConflict // 409
	case domain.ECONFIG, domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	case domain.ENOTIMPL:
		return http.StatusNotImplemented // 501
	case domain.ESEND:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}
