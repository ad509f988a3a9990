// Copyright (c) 2026 Housika. All rights reserved.

package auth

import "time"

// # Authentication Constraints

const (
	// MinPasswordLength applies to every password the API accepts.
	MinPasswordLength = 8

	// MaxFullNameLength bounds display names.
	MaxFullNameLength = 120

	// ResetTokenTTL is how long both the reset link and the OTP stay valid.
	ResetTokenTTL = time.Hour

	// ResetTokenLength is the byte length of the random reset token.
	ResetTokenLength = 32

	// OTPDigits is the length of the numeric reset code.
	OTPDigits = 6

	// Brand appears in outgoing email.
	Brand = "Housika Properties"
)
