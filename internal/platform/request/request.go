// Copyright (c) 2026 Housika. All rights reserved.

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It hides the router's parameter extraction, body decoding and bearer-token
lookup behind one small surface so handlers stay uniform.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/housika/housika-api/internal/platform/apperr"
	"github.com/housika/housika-api/internal/platform/constants"
	"github.com/housika/housika-api/internal/platform/ctxutil"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/platform/validate"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - writer: http.ResponseWriter (used to cap the body size)
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
BearerToken returns the raw session token presented by the caller.

The Authorization header wins over the session cookie. The boolean is false
when neither is present; a malformed header yields an empty token with true,
which the session store then rejects like any other bad token.
*/
func BearerToken(request *http.Request) (string, bool) {
	if header := request.Header.Get(constants.HeaderAuthorization); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "bearer") {
			return "", true
		}
		return strings.TrimSpace(token), true
	}

	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	return "", false
}

// Claims extracts the session claims, or nil if the request is anonymous.
func Claims(request *http.Request) *sec.SessionClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the session claims.

Returns:
  - *sec.SessionClaims: The authenticated caller
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.SessionClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}
