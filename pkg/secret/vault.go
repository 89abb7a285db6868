package secret

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/vault/api"
)

// DefaultVaultField is the key inside the Vault secret holding the API key.
const DefaultVaultField = "api_key"

// Vault reads the API key from a Vault KV secret. KV v2 paths include the
// "data/" segment, e.g. secret/data/psktron.
type Vault struct {
	client *api.Client
	path   string
	field  string
}

// NewVault creates a Vault source. An empty address falls back to VAULT_ADDR;
// the token comes from VAULT_TOKEN.
func NewVault(address, path, field string) (*Vault, error) {
	if path == "" {
		return nil, fmt.Errorf("vault path is required")
	}
	if field == "" {
		field = DefaultVaultField
	}

	config := api.DefaultConfig()
	if address != "" {
		config.Address = address
	}
	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	return &Vault{
		client: client,
		path:   strings.Trim(path, "/"),
		field:  field,
	}, nil
}

// SetToken overrides the token picked up from the environment.
func (v *Vault) SetToken(token string) {
	v.client.SetToken(token)
}

func (v *Vault) APIKey(ctx context.Context) (string, error) {
	secret, err := v.client.Logical().ReadWithContext(ctx, v.path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", v.path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no secret at %s", v.path)
	}

	data := secret.Data
	// KV v2 nests the fields under "data".
	if nested, ok := data["data"].(map[string]interface{}); ok {
		data = nested
	}

	raw, ok := data[v.field]
	if !ok {
		return "", fmt.Errorf("secret %s has no field %q", v.path, v.field)
	}
	key, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q of secret %s is not a string", v.field, v.path)
	}
	return strings.TrimSpace(key), nil
}

func (v *Vault) String() string { return "vault:" + v.path }
