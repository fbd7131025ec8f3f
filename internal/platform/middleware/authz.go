// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/locafleet/rental-api/internal/platform/apperr"
	"github.com/locafleet/rental-api/internal/platform/constants"
	"github.com/locafleet/rental-api/internal/platform/ctxutil"
	"github.com/locafleet/rental-api/internal/platform/respond"
	"github.com/locafleet/rental-api/internal/platform/sec"
)

/*
SessionValidator resolves a raw session token into an authenticated principal.

Implemented by the auth session manager. Defined here as a consumer-side
interface so this package does not depend on internal/auth.
*/
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (*sec.Principal, error)
}

/*
Authenticate resolves the session token from the request (Authorization
bearer header first, session cookie second) and, when valid, attaches the
resulting principal to the request context.

Requests without a token, or with an invalid/expired one, pass through
unauthenticated — individual routes decide whether authentication is
required via RequireAuth / RequirePermission.
*/
func Authenticate(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := extractToken(request)
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			principal, err := validator.ValidateToken(request.Context(), token)
			if err != nil {
				// Invalid or expired session: continue anonymously. The route
				// guards will reject with 401 if authentication is mandatory.
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

/*
RequireAuth rejects unauthenticated requests with 401 Unauthorized.
*/
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

/*
RequirePermission rejects requests whose principal lacks the given permission.

Authorization is a pure function of the principal's role: no storage access
happens here, so the check is deterministic and cheap enough to run on every
request.
*/
func RequirePermission(permission sec.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !principal.Can(permission) {
				respond.Error(writer, request, apperr.PermissionDenied())
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// extractToken pulls the session token from the Authorization header
// ("Bearer <token>") or, failing that, from the session cookie.
func extractToken(request *http.Request) string {
	header := request.Header.Get(constants.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	cookie, err := request.Cookie(constants.SessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}
