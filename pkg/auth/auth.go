package auth

import (
	"fmt"
	"strings"
)

// ExtractBearerToken extracts the token from a Bearer authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is empty")
	}

	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", fmt.Errorf("invalid authorization header format, expected 'Bearer <token>'")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("token is empty")
	}
	if strings.ContainsAny(token, " \t") {
		return "", fmt.Errorf("invalid authorization header format, expected 'Bearer <token>'")
	}

	return token, nil
}
