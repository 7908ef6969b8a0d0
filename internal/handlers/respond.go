package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"qa-gate/internal/apperror"
	"qa-gate/internal/middleware"
	"qa-gate/internal/models"
	"qa-gate/pkg/validator"
)

// ErrorResponse is the body of every failed request
type ErrorResponse = middleware.ErrorResponse

// statusFor maps an error kind to its HTTP status
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindInvalidTransition, apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindAuthorization:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes err as an ErrorResponse. Internal errors are logged and
// their details withheld from the client.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	status := statusFor(kind)

	body := ErrorResponse{Error: string(kind), Message: err.Error()}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Field = appErr.Field
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		body.Message = ErrMsgInternal
		body.Field = ""
	}

	if err := JSONResponse(w, status, body); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	if err := JSONResponse(w, status, data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// decodeJSON decodes the request body into dst and validates its tags
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.Validation("body", ErrMsgInvalidRequestBody)
	}
	return validate(dst)
}

func validate(v interface{}) error {
	err := validator.ValidateStruct(v)
	var fieldErr *validator.FieldError
	if errors.As(err, &fieldErr) {
		return apperror.Validation(fieldErr.Field, fieldErr.Message)
	}
	return err
}

// requireActor returns the authenticated actor or writes a 401
func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: ErrMsgUnauthorized})
		return models.Actor{}, false
	}
	return actor, true
}
