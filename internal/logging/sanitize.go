// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package logging

import "strings"

// maxLoggedValue bounds user-controlled strings written to the log.
const maxLoggedValue = 128

// SanitizeValue strips control characters (log injection) from a
// user-controlled value and truncates it.
func SanitizeValue(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if len(s) > maxLoggedValue {
		return s[:maxLoggedValue] + "..."
	}
	return s
}

// SanitizeToken masks a bearer token, keeping 4 characters at each end.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeEmail keeps the first two characters of the local part and the domain.
//
//	"alice@example.com" -> "al***@example.com"
func SanitizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + SanitizeValue(domain)
	}
	return SanitizeValue(local[:2]) + "***" + SanitizeValue(domain)
}
