package credential

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"
)

// Rand is the source of randomness for passphrase generators. It is an
// explicit dependency so tests can script exact outputs.
type Rand interface {
	// IntN returns a uniform value in [0, n). n > 0.
	IntN(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// CryptoRand returns a ChaCha8 generator seeded from the operating system's
// CSPRNG. It is safe for concurrent use.
func CryptoRand() Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("credential: reading random seed: " + err.Error())
	}
	return &lockedRand{r: rand.New(rand.NewChaCha8(seed))}
}
