package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthnMiddleware verifies the Bearer token on incoming requests and
// injects the subject id into the request context. Tokens are HS256-signed
// by the marketplace gateway with a key shared through configuration.
func AuthnMiddleware(secret []byte) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := subjectFromBearer(r, secret)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				WriteError(w, http.StatusUnauthorized,
					"invalid_token", "Missing or invalid access token")
				return
			}

			ctx := context.WithValue(r.Context(), CtxKeySubjectID, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func subjectFromBearer(r *http.Request, secret []byte) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}

	token, err := jwt.Parse(strings.TrimPrefix(auth, prefix),
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", false
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", false
	}
	return subject, true
}
