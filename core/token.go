package core

import (
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const MinTokenBytes = 32

type TokenIssuer interface {
	Issue() (string, error)
}

// RandomTokenIssuer issues base58 bearer tokens drawn from crypto/rand.
type RandomTokenIssuer struct {
	Size int
}

func NewRandomTokenIssuer(size int) RandomTokenIssuer {
	if size < MinTokenBytes {
		size = MinTokenBytes
	}
	return RandomTokenIssuer{Size: size}
}

func (i RandomTokenIssuer) Issue() (string, error) {
	size := i.Size
	if size < MinTokenBytes {
		size = MinTokenBytes
	}
	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("core: generate promise token: %w", err)
	}
	return base58.Encode(raw), nil
}

// tokenHint returns a short prefix safe to place in logs.
func tokenHint(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}

var _ TokenIssuer = RandomTokenIssuer{}
