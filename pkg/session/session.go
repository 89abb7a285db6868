// Package session holds the operator's explicit organization and network
// selection and the resolution derived from it.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/resolver"
	"github.com/newtron-network/psktron/pkg/util"
)

// Selection is what the operator picked.
type Selection struct {
	Organization string `json:"organization"`
	Network      string `json:"network"`
}

// Session binds one API credential to a selection. A resolution is reused
// until the selection changes.
type Session struct {
	API    meraki.API
	Target resolver.Target
	Strict bool

	mu        sync.Mutex
	selection Selection
	resolved  *resolver.Context
}

// New creates a session with no selection.
func New(api meraki.API, target resolver.Target, strict bool) *Session {
	return &Session{API: api, Target: target, Strict: strict}
}

// Select replaces the selection and drops any earlier resolution.
func (s *Session) Select(sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sel != s.selection {
		s.resolved = nil
	}
	s.selection = sel
}

// Selection returns the current selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Resolve returns the context for the current selection, resolving it on
// first use.
func (s *Session) Resolve(ctx context.Context) (*resolver.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selection.Organization == "" {
		return nil, fmt.Errorf("%w: no organization selected", util.ErrInvalidConfig)
	}
	if s.selection.Network == "" {
		return nil, fmt.Errorf("%w: no network selected", util.ErrInvalidConfig)
	}
	if s.resolved != nil {
		return s.resolved, nil
	}

	rc, err := resolver.New(s.API, s.Strict).Resolve(ctx, resolver.Request{
		Organization: s.selection.Organization,
		Network:      s.selection.Network,
		Target:       s.Target,
	})
	if err != nil {
		return nil, err
	}
	s.resolved = rc
	util.WithNetwork(rc.NetworkID).Debugf("session resolved %s/%s", rc.OrganizationName, rc.NetworkName)
	return rc, nil
}
