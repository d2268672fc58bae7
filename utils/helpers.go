package utils

import "strings"

// BearerToken extracts the token from an "Authorization: Bearer" value.
func BearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
