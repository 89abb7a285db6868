// Package settings manages persistent operator settings for the psktron CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Settings holds persistent operator preferences
type Settings struct {
	// DefaultOrganization is used when -o is not specified
	DefaultOrganization string `json:"default_organization,omitempty"`

	// DefaultNetwork is used when -n is not specified
	DefaultNetwork string `json:"default_network,omitempty"`

	// ConfigPath overrides ~/.psktron/config.yaml
	ConfigPath string `json:"config_path,omitempty"`

	// Prefix is the default credential name prefix
	Prefix string `json:"prefix,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "psktron_settings.json"
	}
	return filepath.Join(home, ".psktron", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// fields maps the keys accepted by Get and Set to their storage.
func (s *Settings) fields() map[string]*string {
	return map[string]*string{
		"organization": &s.DefaultOrganization,
		"network":      &s.DefaultNetwork,
		"config":       &s.ConfigPath,
		"prefix":       &s.Prefix,
	}
}

// Keys lists the setting names in sorted order
func Keys() []string {
	keys := make([]string, 0, 4)
	for k := range (&Settings{}).fields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a named setting
func (s *Settings) Get(key string) (string, error) {
	p, ok := s.fields()[key]
	if !ok {
		return "", fmt.Errorf("unknown setting %q (valid: %v)", key, Keys())
	}
	return *p, nil
}

// Set assigns a named setting. An empty value unsets it.
func (s *Settings) Set(key, value string) error {
	p, ok := s.fields()[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %v)", key, Keys())
	}
	*p = value
	return nil
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
