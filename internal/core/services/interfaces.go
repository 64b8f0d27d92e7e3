package services

import "context"

// CredentialVerifier re-checks a reader's password before a
// circulation operation. AuthService is the production implementation.
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context, accountID uint, secret string) (bool, error)
}
