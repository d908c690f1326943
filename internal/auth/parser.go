package auth

import (
	"strings"
)

// ParseTokenHeader extracts the key from an "Authorization: Token <key>"
// header value. The scheme keyword is case-insensitive.
//
// An empty header or a different scheme yields ErrNoCredentials; a Token
// header without exactly one well-formed key yields
// ErrInvalidAuthorizationHeader.
func ParseTokenHeader(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || !strings.EqualFold(parts[0], TokenKeyword) {
		return "", ErrNoCredentials
	}
	if len(parts) != 2 {
		return "", ErrInvalidAuthorizationHeader
	}
	if !isPrintableASCII(parts[1]) {
		return "", ErrInvalidAuthorizationHeader
	}
	return parts[1], nil
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
