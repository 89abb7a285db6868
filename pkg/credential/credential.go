// Package credential derives identity PSK credentials for dwelling units.
//
// A credential has two halves with different rules. The display name is a
// pure function of (prefix, unit) so re-runs name the same unit the same way.
// The passphrase depends only on the generator's random source, never on the
// unit or prefix.
package credential

import (
	"fmt"
	"strings"
)

// DefaultNameTemplate renders "CC - APT 101" for prefix CC and unit 101.
const DefaultNameTemplate = "{prefix} - APT {unit}"

// MinPassphraseLength is the WPA2/WPA3-personal floor.
const MinPassphraseLength = 8

// Credential is a display name and passphrase pair.
type Credential struct {
	DisplayName string `json:"name"`
	Passphrase  string `json:"psk"`
}

// Generator produces passphrases.
type Generator interface {
	Passphrase() string
}

// Namer renders display names from a template holding {prefix} and {unit}.
type Namer struct {
	Template string
}

// NewNamer validates the template. An empty template selects the default.
func NewNamer(template string) (Namer, error) {
	if template == "" {
		template = DefaultNameTemplate
	}
	if !strings.Contains(template, "{unit}") {
		return Namer{}, fmt.Errorf("name template %q must contain {unit}", template)
	}
	return Namer{Template: template}, nil
}

// Name renders the display name for one unit.
func (n Namer) Name(prefix, unit string) string {
	r := strings.NewReplacer("{prefix}", prefix, "{unit}", unit)
	return strings.TrimSpace(r.Replace(n.Template))
}

// Policy pairs a Namer with a passphrase Generator.
type Policy struct {
	Namer     Namer
	Generator Generator
}

// NewPolicy creates a policy from a name template and a generator.
func NewPolicy(template string, gen Generator) (*Policy, error) {
	namer, err := NewNamer(template)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, fmt.Errorf("passphrase generator is required")
	}
	return &Policy{Namer: namer, Generator: gen}, nil
}

// Generate derives the credential for unit under prefix.
func (p *Policy) Generate(unit, prefix string) Credential {
	return Credential{
		DisplayName: p.Namer.Name(prefix, unit),
		Passphrase:  p.Generator.Passphrase(),
	}
}
