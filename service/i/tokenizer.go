package i

import (
	"time"
)

// Tokenizer issues and verifies the bearer tokens that guard the simulation API.
type Tokenizer interface {
	// Generate creates a token carrying claims that expires after expTime.
	Generate(claims map[string]any, expTime time.Duration) (string, error)

	// Decode validates a token, including its issuer, and returns its claims.
	Decode(token string) (map[string]any, error)
}
