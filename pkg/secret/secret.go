// Package secret finds the Dashboard API key. The key lives only in memory
// for the life of the process and is never logged.
package secret

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/newtron-network/psktron/pkg/util"
)

// DefaultEnv is the variable read when no other source is configured.
const DefaultEnv = "MERAKI_DASHBOARD_API_KEY"

// ErrNoAPIKey is returned when every source came up empty.
var ErrNoAPIKey = errors.New("no Dashboard API key available")

// Source yields an API key. An empty key with a nil error means the source
// has nothing to offer and the next one should be tried.
type Source interface {
	APIKey(ctx context.Context) (string, error)
	String() string
}

// Static is a key given on the command line.
type Static string

func (s Static) APIKey(ctx context.Context) (string, error) { return strings.TrimSpace(string(s)), nil }
func (s Static) String() string                             { return "flag" }

// Env reads a key from an environment variable.
type Env struct {
	Var    string
	Lookup func(string) (string, bool)
}

// NewEnv reads name, or DefaultEnv when name is empty.
func NewEnv(name string) *Env {
	if name == "" {
		name = DefaultEnv
	}
	return &Env{Var: name, Lookup: os.LookupEnv}
}

func (e *Env) APIKey(ctx context.Context) (string, error) {
	v, _ := e.Lookup(e.Var)
	return strings.TrimSpace(v), nil
}

func (e *Env) String() string { return "$" + e.Var }

// Prompt asks on the terminal with echo disabled. It yields nothing when
// stdin is not a terminal.
type Prompt struct {
	FD           int
	Out          io.Writer
	IsTerminal   func(fd int) bool
	ReadPassword func(fd int) ([]byte, error)
}

// NewPrompt prompts on stdin, writing the prompt to stderr.
func NewPrompt() *Prompt {
	return &Prompt{
		FD:           int(os.Stdin.Fd()),
		Out:          os.Stderr,
		IsTerminal:   term.IsTerminal,
		ReadPassword: term.ReadPassword,
	}
}

func (p *Prompt) APIKey(ctx context.Context) (string, error) {
	if !p.IsTerminal(p.FD) {
		return "", nil
	}
	fmt.Fprint(p.Out, "Dashboard API key: ")
	key, err := p.ReadPassword(p.FD)
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	return strings.TrimSpace(string(key)), nil
}

func (p *Prompt) String() string { return "prompt" }

// Resolve returns the first non-empty key from sources, in order.
func Resolve(ctx context.Context, sources ...Source) (string, error) {
	for _, s := range sources {
		if s == nil {
			continue
		}
		key, err := s.APIKey(ctx)
		if err != nil {
			return "", fmt.Errorf("%s: %w", s, err)
		}
		if key != "" {
			util.WithField("source", s.String()).Debugf("using API key %s", util.MaskSecret(key))
			return key, nil
		}
	}
	return "", ErrNoAPIKey
}
