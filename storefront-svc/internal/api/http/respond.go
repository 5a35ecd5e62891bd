package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"huongque-storefront/storefront-svc/internal/service"

	"go.uber.org/zap"
)

type envelope struct {
	Data          any                    `json:"data,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Notifications []service.Notification `json:"notifications"`
}

func logField(sid string) zap.Field {
	return zap.String("session_id", sid)
}

func writeJSON(w http.ResponseWriter, status int, v *visit, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Data: data, Notifications: v.notes.List()})
}

func (h *Handler) writeError(w http.ResponseWriter, v *visit, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", logField(v.id), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Error: err.Error(), Notifications: v.notes.List()})
}

func statusFor(err error) int {
	var (
		validationErr *service.ValidationError
		pastErr       *service.PastDateError
		writeErr      *service.StoreWriteError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &pastErr), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthRequired), errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidPromoCode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &writeErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("malformed request body")

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
