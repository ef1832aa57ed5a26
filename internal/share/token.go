package share

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TokenSource mints opaque share tokens.
type TokenSource interface {
	NewToken() (string, error)
}

// TokenFunc adapts a function to a TokenSource.
type TokenFunc func() (string, error)

func (f TokenFunc) NewToken() (string, error) { return f() }

// RandomTokens returns a TokenSource of 32 hex character tokens drawn from
// random (version 4) UUIDs.
func RandomTokens() TokenSource {
	return TokenFunc(func() (string, error) {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("share.RandomTokens: %w", err)
		}
		return strings.ReplaceAll(id.String(), "-", ""), nil
	})
}
