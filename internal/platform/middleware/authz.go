// Copyright (c) 2026 Housika. All rights reserved.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/housika/housika-api/internal/platform/apperr"
	"github.com/housika/housika-api/internal/platform/ctxutil"
	requestutil "github.com/housika/housika-api/internal/platform/request"
	"github.com/housika/housika-api/internal/platform/respond"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/users/session"
)

// SessionResolver turns a raw bearer token into live session claims.
//
// # Why an interface?
//
// It decouples the middleware from [session.Store] so tests can inject fakes.
type SessionResolver interface {
	Resolve(ctx context.Context, rawToken string) (*sec.SessionClaims, bool, error)
}

// Authenticate resolves the bearer token into session claims.
//
// # Flow
//  1. Take the token from 'Authorization: Bearer <token>', else the session cookie.
//  2. If neither is present, the request proceeds as anonymous.
//  3. Resolve it through the session store. Malformed, expired, forged and
//     revoked tokens all produce the same 401.
//  4. A registry outage produces 503. The token is never accepted blindly.
//  5. Inject [*sec.SessionClaims] into the request context.
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Anonymous Access ───────────────────────────────────────────
			rawToken, present := requestutil.BearerToken(request)
			if !present {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Resolution ─────────────────────────────────────────────────
			claims, ok, err := resolver.Resolve(request.Context(), rawToken)
			if err != nil {
				respond.Error(writer, request, session.ToAppError(err))
				return
			}
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("user_id", claims.UserID)))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRoles allows only callers whose role is in the allow-list.
//
// It implies [RequireAuth]. Unknown roles never match.
func RequireRoles(roles ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !claims.Role.IsKnown() || !slices.Contains(roles, claims.Role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// IsOwnerOrRole reports whether the caller owns the resource or holds one of
// the elevated roles.
func IsOwnerOrRole(claims *sec.SessionClaims, ownerID string, roles ...sec.Role) bool {
	if claims == nil {
		return false
	}
	if ownerID != "" && claims.UserID == ownerID {
		return true
	}
	return claims.Role.IsKnown() && slices.Contains(roles, claims.Role)
}
