package credential

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DefaultBlocklist holds the two-digit separators the word policy never uses.
var DefaultBlocklist = []int{69}

// Separator range for the word policy.
const (
	minSeparator = 10
	maxSeparator = 99
)

// minWordLength keeps the shortest possible passphrase at or above
// MinPassphraseLength: 3 + 2 + 3.
const minWordLength = 3

// DefaultWords is the built-in list for memorable passphrases.
var DefaultWords = []string{
	"acorn", "amber", "anchor", "apple", "arrow", "aspen", "badge", "bagel",
	"banjo", "basil", "beach", "berry", "birch", "bison", "blaze", "bloom",
	"brave", "brick", "brook", "cabin", "cactus", "camel", "candle", "canyon",
	"cedar", "cherry", "cider", "clover", "cobalt", "comet", "coral", "cosmic",
	"crane", "crisp", "daisy", "delta", "dune", "eagle", "ember", "falcon",
	"fern", "fig", "flame", "forest", "fox", "frost", "garden", "gecko",
	"ginger", "glacier", "grape", "gravel", "harbor", "hazel", "heron", "honey",
	"island", "ivory", "jade", "jasper", "juniper", "kayak", "kettle", "kiwi",
	"lagoon", "lantern", "lemon", "lotus", "maple", "marble", "meadow", "melon",
	"mango", "mesa", "mint", "moss", "nectar", "nutmeg", "oasis", "ocean",
	"orbit", "otter", "panda", "pepper", "pebble", "pine", "planet", "plum",
	"pocket", "prairie", "quartz", "quill", "raven", "reef", "river", "robin",
	"saddle", "sage", "shadow", "spruce", "summit", "sunset", "thistle", "tiger",
	"timber", "topaz", "tulip", "tundra", "velvet", "walnut", "willow", "zephyr",
}

// WordGenerator builds passphrases as word + two-digit number + word. The two
// words are distinct entries of the list and each has exactly one letter
// upper-cased.
type WordGenerator struct {
	words   []string
	numbers []int
	rand    Rand
}

// NewWordGenerator validates the word list and blocklist.
func NewWordGenerator(words []string, blocklist []int, r Rand) (*WordGenerator, error) {
	if len(words) == 0 {
		words = DefaultWords
	}

	normalized := make([]string, 0, len(words))
	seen := make(map[string]bool)
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) < minWordLength {
			return nil, fmt.Errorf("word %q is shorter than %d letters", w, minWordLength)
		}
		for _, c := range w {
			if c < 'a' || c > 'z' {
				return nil, fmt.Errorf("word %q must contain only ASCII letters", w)
			}
		}
		if seen[w] {
			continue
		}
		seen[w] = true
		normalized = append(normalized, w)
	}
	if len(normalized) < 2 {
		return nil, fmt.Errorf("word list needs at least 2 distinct words, have %d", len(normalized))
	}

	var numbers []int
	for n := minSeparator; n <= maxSeparator; n++ {
		if !slices.Contains(blocklist, n) {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("blocklist excludes every number in [%d,%d]", minSeparator, maxSeparator)
	}

	if r == nil {
		r = CryptoRand()
	}
	return &WordGenerator{words: normalized, numbers: numbers, rand: r}, nil
}

// Passphrase returns a new memorable passphrase such as "maPle42Otter".
func (g *WordGenerator) Passphrase() string {
	// Two draws without replacement.
	i := g.rand.IntN(len(g.words))
	j := g.rand.IntN(len(g.words) - 1)
	if j >= i {
		j++
	}

	first := g.capitalizeOne(g.words[i])
	second := g.capitalizeOne(g.words[j])
	number := g.numbers[g.rand.IntN(len(g.numbers))]

	return first + strconv.Itoa(number) + second
}

// Allowed reports whether n may appear as the separator.
func (g *WordGenerator) Allowed(n int) bool {
	return slices.Contains(g.numbers, n)
}

func (g *WordGenerator) capitalizeOne(word string) string {
	pos := g.rand.IntN(len(word))
	b := []byte(word)
	b[pos] = b[pos] - 'a' + 'A'
	return string(b)
}
