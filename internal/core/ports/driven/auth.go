package driven

import "github.com/custodia-labs/lectern/internal/core/domain"

// AuthAdapter handles admin authentication cryptographic operations.
type AuthAdapter interface {
	// Key operations
	HashKey(key string) (string, error)
	VerifyKey(key, hash string) bool

	// Token operations
	GenerateToken(claims *domain.AdminClaims) (string, error)
	ParseToken(token string) (*domain.AdminClaims, error)
}
