package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/newtron-network/psktron/internal/testutil"
	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/util"
)

func defaultRequest() Request {
	return Request{
		Organization: "Acme Living",
		Network:      "Tower A",
		Target:       Target{SSIDName: DefaultSSIDName, GroupPolicyName: DefaultGroupPolicyName},
	}
}

func TestResolve(t *testing.T) {
	d := testutil.NewDashboard()

	rc, err := New(d, false).Resolve(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if rc.OrganizationID != "111" {
		t.Errorf("OrganizationID = %q, want %q", rc.OrganizationID, "111")
	}
	if rc.NetworkID != "L_1" {
		t.Errorf("NetworkID = %q, want %q", rc.NetworkID, "L_1")
	}
	if rc.SSIDNumber != 3 {
		t.Errorf("SSIDNumber = %d, want 3", rc.SSIDNumber)
	}
	if rc.GroupPolicyID != "101" {
		t.Errorf("GroupPolicyID = %q, want %q", rc.GroupPolicyID, "101")
	}
	if len(rc.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", rc.Warnings)
	}
	if n := d.CallCount("CreateIdentityPSK"); n != 0 {
		t.Errorf("Resolve() made %d create calls", n)
	}
}

func TestResolve_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request, *testutil.Dashboard)
		want   error
	}{
		{
			name:   "organization",
			mutate: func(r *Request, _ *testutil.Dashboard) { r.Organization = "Nope" },
			want:   util.ErrOrganizationNotFound,
		},
		{
			name:   "network",
			mutate: func(r *Request, _ *testutil.Dashboard) { r.Network = "Tower Z" },
			want:   util.ErrNetworkNotFound,
		},
		{
			name:   "ssid",
			mutate: func(_ *Request, d *testutil.Dashboard) { d.SSIDs["L_1"] = d.SSIDs["L_1"][:1] },
			want:   util.ErrIdentityNotFound,
		},
		{
			name:   "group policy",
			mutate: func(r *Request, _ *testutil.Dashboard) { r.Target.GroupPolicyName = "Resident_1Gbps" },
			want:   util.ErrPolicyNotFound,
		},
		{
			name: "name match is case sensitive",
			mutate: func(r *Request, _ *testutil.Dashboard) {
				r.Target.SSIDName = strings.ToLower(DefaultSSIDName)
			},
			want: util.ErrIdentityNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testutil.NewDashboard()
			req := defaultRequest()
			tt.mutate(&req, d)

			rc, err := New(d, false).Resolve(context.Background(), req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.want)
			}
			if rc != nil {
				t.Errorf("Resolve() returned a context alongside an error")
			}
			if !util.IsConfigurationError(err) {
				t.Errorf("not-found error should be a configuration error")
			}
		})
	}
}

func TestResolve_OrganizationNotFoundStopsEarly(t *testing.T) {
	d := testutil.NewDashboard()
	req := defaultRequest()
	req.Organization = "Nope"

	_, _ = New(d, false).Resolve(context.Background(), req)
	if n := d.CallCount("ListNetworks"); n != 0 {
		t.Errorf("ListNetworks called %d times after organization lookup failed", n)
	}
}

func TestResolve_AmbiguousNames(t *testing.T) {
	newDashboard := func() *testutil.Dashboard {
		d := testutil.NewDashboard()
		d.Networks["111"] = append(d.Networks["111"], meraki.Network{ID: "L_2", OrganizationID: "111", Name: "Tower A"})
		return d
	}

	t.Run("first match with warning", func(t *testing.T) {
		rc, err := New(newDashboard(), false).Resolve(context.Background(), defaultRequest())
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if rc.NetworkID != "L_1" {
			t.Errorf("NetworkID = %q, want first match L_1", rc.NetworkID)
		}
		if len(rc.Warnings) != 1 || !strings.Contains(rc.Warnings[0], "L_1") {
			t.Errorf("Warnings = %v, want one ambiguity warning", rc.Warnings)
		}
	})

	t.Run("strict", func(t *testing.T) {
		_, err := New(newDashboard(), true).Resolve(context.Background(), defaultRequest())
		var amb *util.AmbiguousNameError
		if !errors.As(err, &amb) {
			t.Fatalf("Resolve() error = %v, want AmbiguousNameError", err)
		}
		if amb.Kind != util.KindNetwork || len(amb.IDs) != 2 {
			t.Errorf("AmbiguousNameError = %+v", amb)
		}
	})
}

func TestResolve_DisabledSSIDWarns(t *testing.T) {
	d := testutil.NewDashboard()
	d.SSIDs["L_1"][1].Enabled = false

	rc, err := New(d, false).Resolve(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(rc.Warnings) != 1 || !strings.Contains(rc.Warnings[0], "disabled") {
		t.Errorf("Warnings = %v, want disabled-SSID warning", rc.Warnings)
	}
}

func TestResolve_RequiresTarget(t *testing.T) {
	req := defaultRequest()
	req.Target.GroupPolicyName = ""

	_, err := New(testutil.NewDashboard(), false).Resolve(context.Background(), req)
	if !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("Resolve() error = %v, want ErrInvalidConfig", err)
	}
}

func TestResolve_ListError(t *testing.T) {
	d := testutil.NewDashboard()
	delete(d.Networks, "111")

	_, err := New(d, false).Resolve(context.Background(), defaultRequest())
	if !errors.Is(err, util.ErrAPI) {
		t.Errorf("Resolve() error = %v, want ErrAPI", err)
	}
}
