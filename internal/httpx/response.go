// Package httpx maps service results onto HTTP responses.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/apperr"
)

const RequestIDHeader = "X-Request-ID"

var validate = validator.New(validator.WithRequiredStructEnabled())

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads a JSON body into dst and runs its `validate` struct tags.
// Both failures are reported as apperr.ErrInvalidInput.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed json", apperr.ErrInvalidInput)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed on %q", apperr.ErrInvalidInput, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}

// Status returns the HTTP status and public message for err.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusBadRequest, apperr.ErrInvalidCredentials.Error()
	case errors.Is(err, apperr.ErrUnauthenticated), errors.Is(err, apperr.ErrVerification):
		return http.StatusUnauthorized, apperr.ErrUnauthenticated.Error()
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, apperr.ErrForbidden.Error()
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, apperr.ErrNotFound.Error()
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, apperr.ErrConflict.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// Error writes the response for err. Unexpected errors are logged with the
// request id; expected ones only at debug level.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, err error) {
	status, msg := Status(err)
	if status == http.StatusInternalServerError {
		logger.Errorw("request failed", "path", r.URL.Path, "request_id", w.Header().Get(RequestIDHeader), "err", err)
	} else {
		logger.Debugw("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	JSON(w, status, map[string]string{"error": msg})
}
