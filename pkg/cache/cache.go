// Package cache is a read-through cache for Dashboard list calls.
//
// Organizations, networks, SSIDs and group policies change rarely compared
// with how often an operator re-resolves them, so repeated runs against the
// same network can skip four round trips. Create calls always go to the
// Dashboard.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/newtron-network/psktron/pkg/credential"
	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/util"
)

// DefaultTTL is how long a cached list stays valid.
const DefaultTTL = 10 * time.Minute

// Store holds cached bytes. Get reports a miss with ok == false.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Client decorates a meraki.API with a Store.
type Client struct {
	next      meraki.API
	store     Store
	ttl       time.Duration
	namespace string
}

var _ meraki.API = (*Client)(nil)

// New wraps next. Keys are namespaced by a hash of apiKey so two keys with
// different visibility never share entries.
func New(next meraki.API, store Store, apiKey string, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Client{
		next:      next,
		store:     store,
		ttl:       ttl,
		namespace: credential.Namespace(apiKey),
	}
}

// Key returns the store key for a call and its scope.
func (c *Client) Key(call, scope string) string {
	return fmt.Sprintf("psktron:%s:%s:%s", c.namespace, call, scope)
}

func (c *Client) ListOrganizations(ctx context.Context) ([]meraki.Organization, error) {
	return readThrough(ctx, c, "organizations", "", func() ([]meraki.Organization, error) {
		return c.next.ListOrganizations(ctx)
	})
}

func (c *Client) ListNetworks(ctx context.Context, orgID string) ([]meraki.Network, error) {
	return readThrough(ctx, c, "networks", orgID, func() ([]meraki.Network, error) {
		return c.next.ListNetworks(ctx, orgID)
	})
}

func (c *Client) ListSSIDs(ctx context.Context, networkID string) ([]meraki.SSID, error) {
	return readThrough(ctx, c, "ssids", networkID, func() ([]meraki.SSID, error) {
		return c.next.ListSSIDs(ctx, networkID)
	})
}

func (c *Client) ListGroupPolicies(ctx context.Context, networkID string) ([]meraki.GroupPolicy, error) {
	return readThrough(ctx, c, "groupPolicies", networkID, func() ([]meraki.GroupPolicy, error) {
		return c.next.ListGroupPolicies(ctx, networkID)
	})
}

// CreateIdentityPSK is never cached.
func (c *Client) CreateIdentityPSK(ctx context.Context, networkID string, ssidNumber int, psk meraki.IdentityPSK) (*meraki.CreateResult, error) {
	return c.next.CreateIdentityPSK(ctx, networkID, ssidNumber, psk)
}

// readThrough serves from the store when it can. Store failures are logged
// and the call falls through to the Dashboard; errors from the Dashboard
// are never cached.
func readThrough[T any](ctx context.Context, c *Client, call, scope string, fetch func() ([]T, error)) ([]T, error) {
	key := c.Key(call, scope)
	log := util.WithFields(map[string]interface{}{"cache": call, "scope": scope})

	data, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		log.Warnf("cache read failed: %v", err)
	case ok:
		var items []T
		if err := json.Unmarshal(data, &items); err == nil {
			log.Debug("cache hit")
			return items, nil
		}
		log.Warn("discarding unreadable cache entry")
	}

	items, err := fetch()
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(items); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			log.Warnf("cache write failed: %v", err)
		}
	}
	return items, nil
}
