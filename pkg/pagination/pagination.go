// Copyright (c) 2026 Housika. All rights reserved.

// Package pagination parses page/limit query parameters for list endpoints
// and builds the metadata block returned alongside each page.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the page size when none is requested.
	DefaultLimit = 20
	// MaxLimit caps the page size.
	MaxLimit = 100
	// DefaultPage is the first page (1-indexed).
	DefaultPage = 1
)

// Params is a 1-indexed page request.
type Params struct {
	Page  int
	Limit int
}

// Normalize returns p with out-of-range values replaced by the defaults.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	return p
}

// Offset returns the SQL OFFSET for the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta builds the metadata for a page of a result set with total rows.
func NewMeta(params Params, total int) Meta {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}
	return Meta{Page: params.Page, Limit: params.Limit, Total: total, TotalPages: totalPages}
}

// FromRequest reads "page" and "limit" from the query string. Missing or
// malformed values fall back to the defaults.
func FromRequest(request *http.Request) Params {
	query := request.URL.Query()
	return Params{
		Page:  intOrZero(query.Get("page")),
		Limit: intOrZero(query.Get("limit")),
	}.Normalize()
}

func intOrZero(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
