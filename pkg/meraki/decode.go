package meraki

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/newtron-network/psktron/pkg/util"
)

// Raw response shapes. Every field is optional on the wire; the decode
// functions turn a missing required field into a DecodeError instead of a
// silently zero-valued resource.

type rawOrganization struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

type rawNetwork struct {
	ID             *string `json:"id"`
	OrganizationID *string `json:"organizationId"`
	Name           *string `json:"name"`
}

type rawSSID struct {
	Number  *int    `json:"number"`
	Name    *string `json:"name"`
	Enabled *bool   `json:"enabled"`
}

type rawGroupPolicy struct {
	ID   json.RawMessage `json:"groupPolicyId"`
	Name *string         `json:"name"`
}

func decodeOrganizations(path string, raw []rawOrganization) ([]Organization, error) {
	out := make([]Organization, 0, len(raw))
	for i, r := range raw {
		if r.ID == nil || r.Name == nil {
			return nil, missingField(path, i, "id", "name")
		}
		out = append(out, Organization{ID: *r.ID, Name: *r.Name})
	}
	return out, nil
}

func decodeNetworks(path string, raw []rawNetwork) ([]Network, error) {
	out := make([]Network, 0, len(raw))
	for i, r := range raw {
		if r.ID == nil || r.Name == nil {
			return nil, missingField(path, i, "id", "name")
		}
		n := Network{ID: *r.ID, Name: *r.Name}
		if r.OrganizationID != nil {
			n.OrganizationID = *r.OrganizationID
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeSSIDs(path string, raw []rawSSID) ([]SSID, error) {
	out := make([]SSID, 0, len(raw))
	for i, r := range raw {
		if r.Number == nil || r.Name == nil {
			return nil, missingField(path, i, "number", "name")
		}
		s := SSID{Number: *r.Number, Name: *r.Name}
		if r.Enabled != nil {
			s.Enabled = *r.Enabled
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeGroupPolicies(path string, raw []rawGroupPolicy) ([]GroupPolicy, error) {
	out := make([]GroupPolicy, 0, len(raw))
	for i, r := range raw {
		if r.Name == nil {
			return nil, missingField(path, i, "groupPolicyId", "name")
		}
		id, err := policyID(r.ID)
		if err != nil {
			return nil, &util.DecodeError{Path: path, Reason: fmt.Sprintf("item %d: %v", i, err)}
		}
		out = append(out, GroupPolicy{ID: id, Name: *r.Name})
	}
	return out, nil
}

// policyID accepts the id as a JSON string or number.
func policyID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("missing field groupPolicyId")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return n.String(), nil
		}
	}
	return "", fmt.Errorf("groupPolicyId has unexpected value %s", string(raw))
}

func missingField(path string, index int, fields ...string) error {
	return &util.DecodeError{
		Path:   path,
		Reason: fmt.Sprintf("item %d is missing one of the required fields %s", index, strings.Join(fields, ", ")),
	}
}
