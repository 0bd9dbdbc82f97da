package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/pkg/httpx"
)

// statusFor maps failure kinds to HTTP status codes.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindExpired:
		return http.StatusGone
	case domain.KindLocked:
		return http.StatusLocked
	case domain.KindInvalidCode:
		return http.StatusBadRequest
	case domain.KindSetupRequired:
		return http.StatusConflict
	case domain.KindDeliveryFailure:
		return http.StatusBadGateway
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure renders a domain failure as the uniform error body, localized
// from the Accept-Language header. Returns false when err is not a domain
// failure so the caller can fall through to its own handling.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) bool {
	var failure *domain.Failure
	if !errors.As(err, &failure) {
		return false
	}

	body := httpx.ErrorResponse{
		Error:            string(failure.Kind),
		ErrorDescription: failure.Message(requestLocale(r)),
	}
	if failure.Kind == domain.KindInvalidCode {
		remaining := failure.Remaining
		body.RemainingAttempts = &remaining
	}
	httpx.WriteJSON(w, statusFor(failure.Kind), body)
	return true
}

// requestLocale extracts the primary language tag from Accept-Language.
// Quality values are ignored; the first tag wins.
func requestLocale(r *http.Request) string {
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return "en"
	}
	tag := strings.TrimSpace(strings.Split(header, ",")[0])
	if i := strings.IndexAny(tag, "-;"); i > 0 {
		tag = tag[:i]
	}
	if tag == "" {
		return "en"
	}
	return strings.ToLower(tag)
}

// writeServerError logs nothing itself; callers log with their own context.
func writeServerError(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
}

// writeUnauthorized is the response for missing or unusable authentication.
func writeUnauthorized(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Missing or invalid access token")
}
