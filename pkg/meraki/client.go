// Package meraki is a small client for the Cisco Meraki Dashboard API v1,
// limited to the calls needed to resolve a wireless target and create
// identity PSKs on it.
package meraki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newtron-network/psktron/pkg/util"
	"github.com/newtron-network/psktron/pkg/version"
)

// DefaultBaseURL is the global Dashboard API endpoint.
const DefaultBaseURL = "https://api.meraki.com/api/v1"

// APIKeyHeader carries the Dashboard API key on every request.
const APIKeyHeader = "X-Cisco-Meraki-API-Key"

// maxPages bounds Link-header pagination.
const maxPages = 100

// Client talks to the Dashboard API over HTTPS.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Dashboard endpoint (regional clouds, tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the HTTP client NewClient
// creates. A client passed with WithHTTPClient keeps its own timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a client bound to one API key for the life of a session.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		userAgent: version.UserAgent(),
		timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// ListOrganizations returns every organization visible to the API key.
func (c *Client) ListOrganizations(ctx context.Context) ([]Organization, error) {
	path := "/organizations"
	var raw []rawOrganization
	if err := c.getAll(ctx, path, &raw); err != nil {
		return nil, err
	}
	return decodeOrganizations(path, raw)
}

// ListNetworks returns the networks of one organization.
func (c *Client) ListNetworks(ctx context.Context, orgID string) ([]Network, error) {
	path := "/organizations/" + url.PathEscape(orgID) + "/networks"
	var raw []rawNetwork
	if err := c.getAll(ctx, path, &raw); err != nil {
		return nil, err
	}
	return decodeNetworks(path, raw)
}

// ListSSIDs returns the wireless identities configured on a network.
func (c *Client) ListSSIDs(ctx context.Context, networkID string) ([]SSID, error) {
	path := "/networks/" + url.PathEscape(networkID) + "/wireless/ssids"
	var raw []rawSSID
	if err := c.getAll(ctx, path, &raw); err != nil {
		return nil, err
	}
	return decodeSSIDs(path, raw)
}

// ListGroupPolicies returns the group policies configured on a network.
func (c *Client) ListGroupPolicies(ctx context.Context, networkID string) ([]GroupPolicy, error) {
	path := "/networks/" + url.PathEscape(networkID) + "/groupPolicies"
	var raw []rawGroupPolicy
	if err := c.getAll(ctx, path, &raw); err != nil {
		return nil, err
	}
	return decodeGroupPolicies(path, raw)
}

// CreateIdentityPSK submits one identity PSK. The passphrase is never logged.
func (c *Client) CreateIdentityPSK(ctx context.Context, networkID string, ssidNumber int, psk IdentityPSK) (*CreateResult, error) {
	path := fmt.Sprintf("/networks/%s/wireless/ssids/%d/identityPsks", url.PathEscape(networkID), ssidNumber)

	body, err := json.Marshal(psk)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	util.WithNetwork(networkID).Debugf("POST %s name=%q", path, psk.Name)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create identity PSK request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading create identity PSK response: %w", err)
	}

	return &CreateResult{StatusCode: resp.StatusCode, Body: string(respBody)}, nil
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// getAll GETs path and follows rel=next Link headers, appending every page
// into out, which must point to a slice. A list longer than maxPages is an
// error rather than a silently short result.
func (c *Client) getAll(ctx context.Context, path string, out interface{}) error {
	next := c.baseURL + path
	var pages []json.RawMessage

	for i := 0; next != "" && i < maxPages; i++ {
		page, link, err := c.get(ctx, path, next)
		if err != nil {
			return err
		}
		pages = append(pages, page)
		if next, err = c.follow(path, next, nextLink(link)); err != nil {
			return err
		}
	}
	if next != "" {
		return &util.DecodeError{Path: path, Reason: fmt.Sprintf("list truncated after %d pages", maxPages)}
	}

	return mergePages(path, pages, out)
}

// follow resolves a pagination link against the current page and refuses
// hosts outside the Dashboard, since every request carries the API key.
func (c *Client) follow(path, current, link string) (string, error) {
	if link == "" {
		return "", nil
	}
	cur, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", &util.DecodeError{Path: path, Reason: "bad pagination link: " + err.Error()}
	}
	target := cur.ResolveReference(ref)

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	if target.Scheme != base.Scheme || !dashboardHost(base.Host, target.Host) {
		return "", &util.DecodeError{Path: path, Reason: "pagination link leaves the Dashboard: " + target.Host}
	}
	return target.String(), nil
}

// dashboardHost reports whether host belongs to the same Dashboard as base.
// api.meraki.com pages through shard hosts such as n123.meraki.com.
func dashboardHost(base, host string) bool {
	if strings.EqualFold(base, host) {
		return true
	}
	domain, ok := strings.CutPrefix(strings.ToLower(base), "api.")
	return ok && strings.HasSuffix(strings.ToLower(host), "."+domain)
}

func (c *Client) get(ctx context.Context, path, rawURL string) (json.RawMessage, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}

	util.Debugf("GET %s", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("GET %s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &util.APIError{
			Method:     http.MethodGet,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return body, resp.Header.Get("Link"), nil
}

// mergePages concatenates JSON array pages and decodes them into out.
func mergePages(path string, pages []json.RawMessage, out interface{}) error {
	var all []json.RawMessage
	for _, page := range pages {
		var items []json.RawMessage
		if err := json.Unmarshal(page, &items); err != nil {
			return &util.DecodeError{Path: path, Reason: "expected a JSON array: " + err.Error()}
		}
		all = append(all, items...)
	}

	merged, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("merging %s pages: %w", path, err)
	}
	if err := json.Unmarshal(merged, out); err != nil {
		return &util.DecodeError{Path: path, Reason: err.Error()}
	}
	return nil
}

// nextLink extracts the rel=next target from an RFC 8288 Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range segments[1:] {
			param = strings.ReplaceAll(strings.TrimSpace(param), " ", "")
			if param == `rel=next` || param == `rel="next"` {
				return strings.Trim(target, "<>")
			}
		}
	}
	return ""
}
