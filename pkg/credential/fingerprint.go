package credential

import (
	crand "crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// fingerprintSize is the number of hash bytes kept in a fingerprint.
const fingerprintSize = 4

// Fingerprinter derives short keyed BLAKE2b tags for secrets so log lines and
// JSON output can refer to a passphrase without containing it.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter creates a fingerprinter with the given key (at most 64
// bytes). A nil key draws a random per-process key.
func NewFingerprinter(key []byte) *Fingerprinter {
	if key == nil {
		key = make([]byte, 32)
		if _, err := crand.Read(key); err != nil {
			panic("credential: reading fingerprint key: " + err.Error())
		}
	}
	return &Fingerprinter{key: key}
}

// Sum returns the hex fingerprint of secret.
func (f *Fingerprinter) Sum(secret string) string {
	h, err := blake2b.New256(f.key)
	if err != nil {
		// Only reachable with a key longer than 64 bytes.
		panic("credential: " + err.Error())
	}
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil)[:fingerprintSize])
}

// Namespace returns a stable unkeyed tag for a high-entropy secret such as
// an API key, for partitioning caches between keys.
func Namespace(secret string) string {
	sum := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:8])
}
