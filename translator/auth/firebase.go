package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	fbAuth "firebase.google.com/go/auth"

	"github.com/visionex-project/imagetrans/pkg/utils"
)

type Auth interface {
	// Returns the e-mail of the verified token owner.
	Verify(ctx context.Context, token string) (string, error)
}

type FirebaseAuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbAuth.Token, error)
}

type Authenticator struct {
	client FirebaseAuthClient
	// E.g., ["example.com"]. An empty list accepts any domain.
	allowedDomains []string
}

func New(client FirebaseAuthClient, allowedDomains []string) *Authenticator {
	return &Authenticator{
		client:         client,
		allowedDomains: utils.Map(allowedDomains, strings.ToLower),
	}
}

func (a *Authenticator) Verify(ctx context.Context, token string) (string, error) {
	decodedToken, err := a.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	email, ok := decodedToken.Claims["email"].(string)
	if !ok {
		return "", fmt.Errorf("failed to verify the token: invalid email in claim")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("failed to verify the token: invalid email format")
	}
	splitEmail := strings.Split(email, "@")
	if len(splitEmail) != 2 {
		return "", fmt.Errorf("failed to verify the token: malformed email structure (expected single '@')")
	}
	if len(a.allowedDomains) > 0 && !utils.Contains(a.allowedDomains, strings.ToLower(splitEmail[1])) {
		return "", fmt.Errorf("failed to verify the token: invalid email domain")
	}

	return email, nil
}
