package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/booking"
	"github.com/subhakaryam/subhakaryam/internal/chat"
	"github.com/subhakaryam/subhakaryam/internal/payment"
	"github.com/subhakaryam/subhakaryam/internal/provider"
	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/middlewares"
	"github.com/subhakaryam/subhakaryam/pkg/storage"
	"github.com/subhakaryam/subhakaryam/pkg/validator"
)

type errorRule struct {
	err    error
	status int
	code   string
}

// errorRules maps domain sentinels to responses. The first match wins.
var errorRules = []errorRule{
	{auth.ErrEmailTaken, http.StatusConflict, "auth.email_taken"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "auth.invalid_credentials"},
	{auth.ErrRoleNotAllowed, http.StatusForbidden, "auth.role_not_allowed"},
	{auth.ErrUserNotFound, http.StatusNotFound, "auth.user_not_found"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "auth.invalid_token"},
	{auth.ErrTokenExpired, http.StatusUnauthorized, "auth.token_expired"},

	{provider.ErrNotFound, http.StatusNotFound, "provider.not_found"},
	{provider.ErrProfileExists, http.StatusConflict, "provider.profile_exists"},
	{provider.ErrSlugTaken, http.StatusConflict, "provider.slug_taken"},
	{provider.ErrPortfolioFull, http.StatusUnprocessableEntity, "provider.portfolio_full"},
	{provider.ErrPortfolioItem, http.StatusNotFound, "provider.portfolio_item_not_found"},
	{provider.ErrInvalidCategory, http.StatusUnprocessableEntity, "provider.invalid_category"},

	{booking.ErrNotFound, http.StatusNotFound, "booking.not_found"},
	{booking.ErrInvalidTransition, http.StatusConflict, "booking.invalid_transition"},
	{booking.ErrInvalidDate, http.StatusUnprocessableEntity, "booking.invalid_date"},
	{booking.ErrEventInPast, http.StatusUnprocessableEntity, "booking.event_in_past"},
	{booking.ErrEventNotReached, http.StatusUnprocessableEntity, "booking.event_not_reached"},
	{booking.ErrNotParticipant, http.StatusForbidden, "booking.not_participant"},
	{booking.ErrOwnProfile, http.StatusForbidden, "booking.own_profile"},
	{booking.ErrAmountTooLow, http.StatusUnprocessableEntity, "booking.amount_too_low"},

	{payment.ErrNotFound, http.StatusNotFound, "payment.not_found"},
	{payment.ErrAlreadyExists, http.StatusConflict, "payment.already_exists"},
	{payment.ErrInvalidTransition, http.StatusConflict, "payment.invalid_transition"},
	{payment.ErrInvalidSignature, http.StatusUnauthorized, "payment.invalid_signature"},
	{payment.ErrInvalidEvent, http.StatusBadRequest, "payment.invalid_event"},
	{payment.ErrNotCustomer, http.StatusForbidden, "payment.not_customer"},
	{payment.ErrNotParticipant, http.StatusForbidden, "payment.not_participant"},
	{payment.ErrReasonRequired, http.StatusUnprocessableEntity, "payment.reason_required"},
	{payment.ErrInvalidOutcome, http.StatusUnprocessableEntity, "payment.invalid_outcome"},

	{chat.ErrEmptyMessage, http.StatusUnprocessableEntity, "chat.empty_message"},
	{chat.ErrMessageTooLong, http.StatusUnprocessableEntity, "chat.message_too_long"},

	{storage.ErrEmptyFile, http.StatusUnprocessableEntity, "storage.empty_file"},
	{storage.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "storage.file_too_large"},
	{storage.ErrInvalidMIME, http.StatusUnsupportedMediaType, "storage.invalid_type"},
}

// toHTTPError resolves err into the error rendered to the client.
func toHTTPError(err error) *web.HTTPError {
	if he := web.AsHTTPError(err); he != nil {
		return he
	}
	for _, r := range errorRules {
		if errors.Is(err, r.err) {
			return web.NewHTTPError(r.status, publicMessage(r.err), web.WithErrorCode(r.code), web.WithError(err))
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return web.NewHTTPError(http.StatusGatewayTimeout, "request timed out", web.WithError(err))
	}
	return web.ErrInternal("internal server error", web.WithError(err))
}

// publicMessage drops the package prefix of a sentinel.
func publicMessage(sentinel error) string {
	msg := sentinel.Error()
	if _, rest, ok := strings.Cut(msg, ": "); ok {
		return rest
	}
	return msg
}

// statusOf predicts the status handleError renders for err.
func statusOf(err error) int {
	if validator.IsValidationError(err) {
		return http.StatusUnprocessableEntity
	}
	return toHTTPError(err).Code
}

type errorResponse struct {
	*web.HTTPError
	RequestID string `json:"request_id,omitempty"`
}

type validationResponse struct {
	Message   string                     `json:"message"`
	Errors    validator.ValidationErrors `json:"errors"`
	RequestID string                     `json:"request_id,omitempty"`
}

// handleError renders every handler error as JSON.
func handleError(c web.Context, err error) error {
	requestID := middlewares.GetRequestID(c.Context())

	if ve := validator.ExtractValidationErrors(err); ve != nil {
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{
			Message:   "validation failed",
			Errors:    ve,
			RequestID: requestID,
		})
	}

	he := toHTTPError(err)
	switch {
	case he.Code >= http.StatusInternalServerError:
		// Panics are logged with their stack by Recover.
		c.LogError("request failed", slog.Any("error", err), slog.Int("status", he.Code))
	case he.Code == http.StatusUnauthorized || he.Code == http.StatusForbidden:
		c.LogWarn("request denied", slog.Any("error", err), slog.Int("status", he.Code))
	}
	return c.JSON(he.Code, errorResponse{HTTPError: he, RequestID: requestID})
}

// handleMethodNotAllowed keeps 405s in the JSON error format.
func handleMethodNotAllowed(c web.Context) error {
	return web.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed")
}
