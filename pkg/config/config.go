// Package config loads the psktron tool configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/psktron/pkg/cache"
	"github.com/newtron-network/psktron/pkg/credential"
	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/resolver"
	"github.com/newtron-network/psktron/pkg/secret"
	"github.com/newtron-network/psktron/pkg/units"
	"github.com/newtron-network/psktron/pkg/util"
)

// Credential policy names.
const (
	PolicyRandom = "random"
	PolicyWords  = "words"
)

// Config is the tool configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Target     TargetConfig     `yaml:"target"`
	Input      InputConfig      `yaml:"input"`
	Credential CredentialConfig `yaml:"credential"`
	Resolve    ResolveConfig    `yaml:"resolve"`
	Provision  ProvisionConfig  `yaml:"provision"`
	Cache      CacheConfig      `yaml:"cache"`
	Export     ExportConfig     `yaml:"export"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	KeyEnv  string        `yaml:"key_env"`
	Vault   VaultConfig   `yaml:"vault"`
}

// VaultConfig is optional; an empty Path disables it.
type VaultConfig struct {
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
	Field   string `yaml:"field"`
}

type TargetConfig struct {
	SSIDName        string `yaml:"ssid_name"`
	GroupPolicyName string `yaml:"group_policy_name"`
}

type InputConfig struct {
	UnitColumn string `yaml:"unit_column"`
}

type CredentialConfig struct {
	NameTemplate string   `yaml:"name_template"`
	Policy       string   `yaml:"policy"`
	Length       int      `yaml:"length"`
	Symbols      string   `yaml:"symbols"`
	Blocklist    []int    `yaml:"blocklist"`
	Words        []string `yaml:"words"`
}

type ResolveConfig struct {
	StrictNames bool `yaml:"strict_names"`
}

type ProvisionConfig struct {
	Workers int `yaml:"workers"`
}

// CacheConfig enables the catalog cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	TTL       time.Duration `yaml:"ttl"`
}

type ExportConfig struct {
	S3 S3Config `yaml:"s3"`
}

// S3Config names the environment variables holding the keys; the keys
// themselves never go in the file.
type S3Config struct {
	Endpoint     string `yaml:"endpoint"`
	Region       string `yaml:"region"`
	Bucket       string `yaml:"bucket"`
	AccessKeyEnv string `yaml:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: meraki.DefaultBaseURL,
			Timeout: 30 * time.Second,
			KeyEnv:  secret.DefaultEnv,
		},
		Target: TargetConfig{
			SSIDName:        resolver.DefaultSSIDName,
			GroupPolicyName: resolver.DefaultGroupPolicyName,
		},
		Input: InputConfig{UnitColumn: units.DefaultColumn},
		Credential: CredentialConfig{
			NameTemplate: credential.DefaultNameTemplate,
			Policy:       PolicyRandom,
			Length:       credential.DefaultLength,
			Symbols:      credential.DefaultSymbols,
			Blocklist:    slices.Clone(credential.DefaultBlocklist),
		},
		Provision: ProvisionConfig{Workers: 1},
		Cache:     CacheConfig{TTL: cache.DefaultTTL},
		Export: ExportConfig{S3: S3Config{
			AccessKeyEnv: "AWS_ACCESS_KEY_ID",
			SecretKeyEnv: "AWS_SECRET_ACCESS_KEY",
		}},
	}
}

// DefaultPath returns ~/.psktron/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".psktron", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", util.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	v := &util.ValidationBuilder{}

	v.Add(c.API.BaseURL != "", "api.base_url is required")
	v.Add(c.API.Timeout > 0, "api.timeout must be positive")
	v.Add(strings.TrimSpace(c.Target.SSIDName) != "", "target.ssid_name is required")
	v.Add(strings.TrimSpace(c.Target.GroupPolicyName) != "", "target.group_policy_name is required")
	v.Add(c.Input.UnitColumn != "", "input.unit_column is required")

	if _, err := credential.NewNamer(c.Credential.NameTemplate); err != nil {
		v.AddErrorf("credential.name_template: %v", err)
	}
	switch c.Credential.Policy {
	case PolicyRandom:
		if _, err := credential.NewRandomGenerator(c.Credential.Length, c.Credential.Symbols, nil); err != nil {
			v.AddErrorf("credential: %v", err)
		}
	case PolicyWords:
		if _, err := credential.NewWordGenerator(c.Credential.Words, c.Credential.Blocklist, nil); err != nil {
			v.AddErrorf("credential: %v", err)
		}
	default:
		v.AddErrorf("credential.policy must be %q or %q, got %q", PolicyRandom, PolicyWords, c.Credential.Policy)
	}

	v.Add(c.Provision.Workers >= 1, "provision.workers must be at least 1")
	if c.Cache.RedisAddr != "" {
		v.Add(c.Cache.TTL > 0, "cache.ttl must be positive")
		v.Add(c.Cache.RedisDB >= 0, "cache.redis_db must not be negative")
	}

	return v.Build()
}

// PolicyFor builds the credential policy, overriding the configured policy
// name when override is non-empty. A nil r uses the crypto-seeded source.
func (c *Config) PolicyFor(override string, r credential.Rand) (*credential.Policy, error) {
	name := c.Credential.Policy
	if override != "" {
		name = override
	}

	var (
		gen credential.Generator
		err error
	)
	switch name {
	case PolicyRandom:
		gen, err = credential.NewRandomGenerator(c.Credential.Length, c.Credential.Symbols, r)
	case PolicyWords:
		gen, err = credential.NewWordGenerator(c.Credential.Words, c.Credential.Blocklist, r)
	default:
		return nil, fmt.Errorf("%w: unknown credential policy %q", util.ErrInvalidConfig, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}
	return credential.NewPolicy(c.Credential.NameTemplate, gen)
}

// ResolverTarget returns the configured SSID and group policy names.
func (c *Config) ResolverTarget() resolver.Target {
	return resolver.Target{
		SSIDName:        c.Target.SSIDName,
		GroupPolicyName: c.Target.GroupPolicyName,
	}
}
