package credential

import (
	"fmt"
	"strings"
)

const (
	letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"

	// DefaultSymbols is the symbol set mixed into random passphrases.
	DefaultSymbols = "!@#$"
	// DefaultLength is the random passphrase length.
	DefaultLength = 12
)

// RandomGenerator draws each character independently from letters, digits
// and a small symbol set.
type RandomGenerator struct {
	length  int
	charset string
	rand    Rand
}

// NewRandomGenerator creates a random-character generator. Symbols must be
// printable ASCII.
func NewRandomGenerator(length int, symbols string, r Rand) (*RandomGenerator, error) {
	if length < MinPassphraseLength {
		return nil, fmt.Errorf("passphrase length %d is below the minimum of %d", length, MinPassphraseLength)
	}
	for _, c := range symbols {
		if c < '!' || c > '~' || strings.ContainsRune(letters+digits, c) {
			return nil, fmt.Errorf("symbol %q is not a printable ASCII symbol", c)
		}
	}
	if r == nil {
		r = CryptoRand()
	}
	return &RandomGenerator{
		length:  length,
		charset: letters + digits + symbols,
		rand:    r,
	}, nil
}

// Charset returns the characters passphrases are drawn from.
func (g *RandomGenerator) Charset() string {
	return g.charset
}

// Passphrase returns a new random passphrase.
func (g *RandomGenerator) Passphrase() string {
	b := make([]byte, g.length)
	for i := range b {
		b[i] = g.charset[g.rand.IntN(len(g.charset))]
	}
	return string(b)
}
