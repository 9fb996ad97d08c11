package i

import (
	"time"
)

// Tokenizer issues and checks the bearer tokens that grant access to a session.
type Tokenizer interface {
	// Generate creates a token with the given claims that expires after expTime.
	Generate(claims map[string]interface{}, expTime time.Duration) (string, error)

	// Decode validates a token and returns its claims.
	Decode(token string) (map[string]interface{}, error)
}
