package session

import (
	"context"
	"errors"
	"testing"

	"github.com/newtron-network/psktron/internal/testutil"
	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/resolver"
	"github.com/newtron-network/psktron/pkg/util"
)

var target = resolver.Target{
	SSIDName:        resolver.DefaultSSIDName,
	GroupPolicyName: resolver.DefaultGroupPolicyName,
}

func TestResolve_RequiresSelection(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
	}{
		{"nothing", Selection{}},
		{"organization only", Selection{Organization: "Acme Living"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testutil.NewDashboard()
			s := New(d, target, false)
			s.Select(tt.sel)

			if _, err := s.Resolve(context.Background()); !errors.Is(err, util.ErrInvalidConfig) {
				t.Errorf("Resolve() error = %v, want ErrInvalidConfig", err)
			}
			if n := d.CallCount("ListOrganizations"); n != 0 {
				t.Errorf("ListOrganizations called %d times", n)
			}
		})
	}
}

func TestResolve_Memoised(t *testing.T) {
	d := testutil.NewDashboard()
	s := New(d, target, false)
	s.Select(Selection{Organization: "Acme Living", Network: "Tower A"})

	first, err := s.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second Resolve() should return the cached context")
	}
	if n := d.CallCount("ListOrganizations"); n != 1 {
		t.Errorf("ListOrganizations called %d times, want 1", n)
	}
	if first.NetworkID != "L_1" || first.SSIDNumber != 3 || first.GroupPolicyID != "101" {
		t.Errorf("context = %+v", first)
	}
}

func TestSelect_InvalidatesResolution(t *testing.T) {
	d := testutil.NewDashboard()
	d.Networks["111"] = append(d.Networks["111"], meraki.Network{ID: "L_2", OrganizationID: "111", Name: "Tower B"})
	d.SSIDs["L_2"] = []meraki.SSID{{Number: 5, Name: "Resident-WiFi", Enabled: true}}
	d.Policies["L_2"] = []meraki.GroupPolicy{{ID: "200", Name: "Resident_150Mbps"}}

	s := New(d, target, false)
	s.Select(Selection{Organization: "Acme Living", Network: "Tower A"})
	if _, err := s.Resolve(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Same selection keeps the cache.
	s.Select(Selection{Organization: "Acme Living", Network: "Tower A"})
	if _, err := s.Resolve(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := d.CallCount("ListOrganizations"); n != 1 {
		t.Errorf("ListOrganizations called %d times, want 1", n)
	}

	s.Select(Selection{Organization: "Acme Living", Network: "Tower B"})
	rc, err := s.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rc.NetworkID != "L_2" || rc.SSIDNumber != 5 || rc.GroupPolicyID != "200" {
		t.Errorf("context after Select = %+v", rc)
	}
	if n := d.CallCount("ListOrganizations"); n != 2 {
		t.Errorf("ListOrganizations called %d times, want 2", n)
	}
}

func TestResolve_ErrorNotCached(t *testing.T) {
	d := testutil.NewDashboard()
	s := New(d, target, false)
	s.Select(Selection{Organization: "Acme Living", Network: "Tower Z"})

	_, err := s.Resolve(context.Background())
	if !errors.Is(err, util.ErrNetworkNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNetworkNotFound", err)
	}
	if _, err := s.Resolve(context.Background()); err == nil {
		t.Error("second Resolve() should retry and fail again")
	}
	if n := d.CallCount("ListOrganizations"); n != 2 {
		t.Errorf("ListOrganizations called %d times, want 2", n)
	}
}
