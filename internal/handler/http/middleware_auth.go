// SPDX-License-Identifier: Apache-2.0

package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noa10/mataresit-app-sub003/internal/logger"
)

// auth enforces bearer-token authentication on the data routes.
//
// It extracts the token from the "Authorization" header, validates the
// signature, issuer and expiry, and stores the token subject in the request
// context as the principal scoping all reads and writes. Requests failing
// any of these checks are rejected with HTTP 401.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := getTokenFromAuthHeader(authHeader)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		principal, err := h.validateToken(tokenString)
		if err != nil {
			log.Err(err).Msg("token rejected")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), principalCtxKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateToken checks the token signature against the configured sign key
// and returns the subject claim.
func (h *Handler) validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString,
		func(*jwt.Token) (any, error) { return []byte(h.signKey), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
	)
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

// getTokenFromAuthHeader extracts the bearer token string from a raw
// "Authorization" header value of the form "<scheme> <token>".
func getTokenFromAuthHeader(authHeader string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", ErrInvalidAuthorizationHeader
	}
	if strings.TrimSpace(parts[1]) == "" {
		return "", ErrEmptyToken
	}
	return parts[1], nil
}

// principalFromContext returns the principal id stored by the auth middleware.
func principalFromContext(ctx context.Context) string {
	principal, _ := ctx.Value(principalCtxKey).(string)
	return principal
}
