// Copyright (c) 2026 Housika. All rights reserved.

/*
Package uuid generates time-ordered identifiers for accounts and tokens.

It wraps google/uuid to produce Version 7 values, which sort by creation time.
That keeps the users table's primary key index append-mostly and lets token
identifiers be ordered when inspected in the registry.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only if the OS random source is unavailable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}

// Valid reports whether s parses as a UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
