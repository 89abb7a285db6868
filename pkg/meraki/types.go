package meraki

import "context"

// Organization is a Dashboard organization visible to the API key.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Network belongs to exactly one organization.
type Network struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId,omitempty"`
	Name           string `json:"name"`
}

// SSID is a network-scoped wireless identity addressed by its slot number.
type SSID struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// GroupPolicy is a network-scoped bandwidth policy.
type GroupPolicy struct {
	ID   string `json:"groupPolicyId"`
	Name string `json:"name"`
}

// IdentityPSK is the body of a create-identity-PSK request.
type IdentityPSK struct {
	Name          string `json:"name"`
	Passphrase    string `json:"passphrase"`
	GroupPolicyID string `json:"groupPolicyId"`
}

// CreateResult is the raw outcome of a create call that reached the server.
type CreateResult struct {
	StatusCode int
	Body       string
}

// Created reports whether the server accepted the credential.
func (r *CreateResult) Created() bool {
	return r.StatusCode == StatusCreated
}

// StatusCreated is the only status the Dashboard returns for a new identity PSK.
const StatusCreated = 201

// API is the slice of the Dashboard API the provisioning pipeline consumes.
//
// List calls return an error for any non-2xx status or malformed body.
// CreateIdentityPSK returns an error only when no response was received; any
// HTTP status is reported through CreateResult.
type API interface {
	ListOrganizations(ctx context.Context) ([]Organization, error)
	ListNetworks(ctx context.Context, orgID string) ([]Network, error)
	ListSSIDs(ctx context.Context, networkID string) ([]SSID, error)
	ListGroupPolicies(ctx context.Context, networkID string) ([]GroupPolicy, error)
	CreateIdentityPSK(ctx context.Context, networkID string, ssidNumber int, psk IdentityPSK) (*CreateResult, error)
}
