package rv

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenSource abstracts revision id generation so tests are
// deterministic.
type TokenSource interface {
	NewToken() string
}

// RandomTokenSource produces 128-bit random tokens rendered as 32
// lowercase hex characters.
type RandomTokenSource struct{}

func (RandomTokenSource) NewToken() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failure is unrecoverable.
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}
	return hex.EncodeToString(b[:])
}
