// Package resolver translates operator-chosen names into the Dashboard
// identifiers a provisioning run needs. It only reads.
package resolver

import (
	"context"
	"fmt"

	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/util"
)

// Defaults for the wireless target.
const (
	DefaultSSIDName        = "Resident-WiFi"
	DefaultGroupPolicyName = "Resident_150Mbps"
)

// Target names the SSID and group policy credentials are bound to.
type Target struct {
	SSIDName        string
	GroupPolicyName string
}

// Request is one resolution: which organization and network, and what to
// look for inside the network.
type Request struct {
	Organization string
	Network      string
	Target       Target
}

// Context is everything a provisioning run needs to submit credentials.
type Context struct {
	OrganizationID   string   `json:"organization_id"`
	OrganizationName string   `json:"organization_name"`
	NetworkID        string   `json:"network_id"`
	NetworkName      string   `json:"network_name"`
	SSIDNumber       int      `json:"ssid_number"`
	SSIDName         string   `json:"ssid_name"`
	GroupPolicyID    string   `json:"group_policy_id"`
	GroupPolicyName  string   `json:"group_policy_name"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Resolver walks organization -> network -> SSID -> group policy.
type Resolver struct {
	api meraki.API
	// Strict turns a name shared by several resources into an
	// AmbiguousNameError instead of a first-match warning.
	Strict bool
}

// New creates a Resolver over the given API.
func New(api meraki.API, strict bool) *Resolver {
	return &Resolver{api: api, Strict: strict}
}

// Resolve performs the full lookup. Any not-found error is terminal for the
// session and identifies which name was missing.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Context, error) {
	if req.Target.SSIDName == "" || req.Target.GroupPolicyName == "" {
		return nil, fmt.Errorf("%w: target SSID and group policy names are required", util.ErrInvalidConfig)
	}

	log := util.WithOperation("resolve")
	rc := &Context{}

	orgs, err := r.api.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	org, err := pick(r, rc, util.KindOrganization, req.Organization, "", orgs,
		func(o meraki.Organization) (string, string) { return o.Name, o.ID })
	if err != nil {
		return nil, err
	}
	rc.OrganizationID, rc.OrganizationName = org.ID, org.Name
	log.Debugf("organization %q -> %s", org.Name, org.ID)

	nets, err := r.api.ListNetworks(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("listing networks of organization %s: %w", org.ID, err)
	}
	net, err := pick(r, rc, util.KindNetwork, req.Network, "organization "+org.ID, nets,
		func(n meraki.Network) (string, string) { return n.Name, n.ID })
	if err != nil {
		return nil, err
	}
	rc.NetworkID, rc.NetworkName = net.ID, net.Name
	log.Debugf("network %q -> %s", net.Name, net.ID)

	ssids, err := r.api.ListSSIDs(ctx, net.ID)
	if err != nil {
		return nil, fmt.Errorf("listing SSIDs of network %s: %w", net.ID, err)
	}
	ssid, err := pick(r, rc, util.KindIdentity, req.Target.SSIDName, "network "+net.ID, ssids,
		func(s meraki.SSID) (string, string) { return s.Name, fmt.Sprintf("%d", s.Number) })
	if err != nil {
		return nil, err
	}
	rc.SSIDNumber, rc.SSIDName = ssid.Number, ssid.Name
	if !ssid.Enabled {
		rc.Warnings = append(rc.Warnings, fmt.Sprintf("SSID '%s' (number %d) is disabled", ssid.Name, ssid.Number))
	}

	policies, err := r.api.ListGroupPolicies(ctx, net.ID)
	if err != nil {
		return nil, fmt.Errorf("listing group policies of network %s: %w", net.ID, err)
	}
	policy, err := pick(r, rc, util.KindPolicy, req.Target.GroupPolicyName, "network "+net.ID, policies,
		func(p meraki.GroupPolicy) (string, string) { return p.Name, p.ID })
	if err != nil {
		return nil, err
	}
	rc.GroupPolicyID, rc.GroupPolicyName = policy.ID, policy.Name

	for _, w := range rc.Warnings {
		log.Warn(w)
	}
	return rc, nil
}

// pick returns the first item whose name matches exactly. Further matches
// are an error in strict mode and a warning otherwise.
func pick[T any](r *Resolver, rc *Context, kind, name, scope string, items []T, key func(T) (string, string)) (T, error) {
	var (
		found T
		ids   []string
	)
	for _, item := range items {
		n, id := key(item)
		if n != name {
			continue
		}
		if len(ids) == 0 {
			found = item
		}
		ids = append(ids, id)
	}

	switch {
	case len(ids) == 0:
		var zero T
		return zero, util.NewNotFoundError(kind, name, scope)
	case len(ids) > 1 && r.Strict:
		var zero T
		return zero, &util.AmbiguousNameError{Kind: kind, Name: name, IDs: ids}
	case len(ids) > 1:
		rc.Warnings = append(rc.Warnings, fmt.Sprintf("%s name '%s' matches %d resources; using %s", kind, name, len(ids), ids[0]))
	}
	return found, nil
}
