// Package testutil provides test helpers shared across packages: an
// in-memory Dashboard and, under the integration tag, Redis helpers.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/util"
)

// Dashboard is an in-memory meraki.API. Zero value is an empty dashboard.
type Dashboard struct {
	Organizations []meraki.Organization
	Networks      map[string][]meraki.Network     // by organization id
	SSIDs         map[string][]meraki.SSID        // by network id
	Policies      map[string][]meraki.GroupPolicy // by network id

	// Reject maps a credential name to a status/body the create call returns.
	Reject map[string]meraki.CreateResult
	// Unreachable maps a credential name to a transport error.
	Unreachable map[string]error

	mu      sync.Mutex
	Created []Submission
	Calls   map[string]int
}

// Submission records one create call.
type Submission struct {
	NetworkID  string
	SSIDNumber int
	PSK        meraki.IdentityPSK
}

// NewDashboard returns a dashboard with one organization, one network, a
// "Resident-WiFi" SSID on slot 3 and a "Resident_150Mbps" policy with id 101.
func NewDashboard() *Dashboard {
	return &Dashboard{
		Organizations: []meraki.Organization{{ID: "111", Name: "Acme Living"}},
		Networks: map[string][]meraki.Network{
			"111": {{ID: "L_1", OrganizationID: "111", Name: "Tower A"}},
		},
		SSIDs: map[string][]meraki.SSID{
			"L_1": {
				{Number: 0, Name: "Guest", Enabled: true},
				{Number: 3, Name: "Resident-WiFi", Enabled: true},
			},
		},
		Policies: map[string][]meraki.GroupPolicy{
			"L_1": {
				{ID: "100", Name: "Staff"},
				{ID: "101", Name: "Resident_150Mbps"},
			},
		},
	}
}

func (d *Dashboard) count(call string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Calls == nil {
		d.Calls = make(map[string]int)
	}
	d.Calls[call]++
}

// CallCount returns how many times a method was invoked.
func (d *Dashboard) CallCount(call string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Calls[call]
}

func (d *Dashboard) ListOrganizations(ctx context.Context) ([]meraki.Organization, error) {
	d.count("ListOrganizations")
	return d.Organizations, nil
}

func (d *Dashboard) ListNetworks(ctx context.Context, orgID string) ([]meraki.Network, error) {
	d.count("ListNetworks")
	nets, ok := d.Networks[orgID]
	if !ok {
		return nil, &util.APIError{Method: "GET", Path: "/organizations/" + orgID + "/networks", StatusCode: 404, Body: `{"errors":["Not found"]}`}
	}
	return nets, nil
}

func (d *Dashboard) ListSSIDs(ctx context.Context, networkID string) ([]meraki.SSID, error) {
	d.count("ListSSIDs")
	return d.SSIDs[networkID], nil
}

func (d *Dashboard) ListGroupPolicies(ctx context.Context, networkID string) ([]meraki.GroupPolicy, error) {
	d.count("ListGroupPolicies")
	return d.Policies[networkID], nil
}

func (d *Dashboard) CreateIdentityPSK(ctx context.Context, networkID string, ssidNumber int, psk meraki.IdentityPSK) (*meraki.CreateResult, error) {
	d.count("CreateIdentityPSK")

	d.mu.Lock()
	d.Created = append(d.Created, Submission{NetworkID: networkID, SSIDNumber: ssidNumber, PSK: psk})
	d.mu.Unlock()

	if err, ok := d.Unreachable[psk.Name]; ok {
		return nil, fmt.Errorf("create identity PSK request failed: %w", err)
	}
	if res, ok := d.Reject[psk.Name]; ok {
		return &res, nil
	}
	return &meraki.CreateResult{StatusCode: meraki.StatusCreated, Body: `{"name":"` + psk.Name + `"}`}, nil
}
