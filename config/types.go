package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
)

// Transport names accepted in backend.transport.
const (
	TransportUnix      = "unix"
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

// BackendConfig selects and addresses the editor backend.
type BackendConfig struct {
	Transport   string `yaml:"transport,omitempty" toml:"transport,omitempty" jsonschema:"description=How to reach the backend: unix (HTTP over a unix socket) or http or websocket,enum=unix,enum=http,enum=websocket,default=unix"`
	Socket      string `yaml:"socket,omitempty" toml:"socket,omitempty" jsonschema:"description=Path of the backend unix socket (default: runtime dir/backend.sock)"`
	URL         string `yaml:"url,omitempty" toml:"url,omitempty" jsonschema:"description=Backend URL for the http and websocket transports"`
	DialTimeout string `yaml:"dial_timeout,omitempty" toml:"dial_timeout,omitempty" jsonschema:"description=How long to wait when connecting to the backend (default: 2s)"`
}

// DialTimeoutDuration parses DialTimeout, falling back to the default.
func (b BackendConfig) DialTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(b.DialTimeout); err == nil && d > 0 {
		return d
	}
	return DefaultDialTimeout
}

// PatchConfig tunes how incoming patches are applied.
type PatchConfig struct {
	EnforceTest bool `yaml:"enforce_test,omitempty" toml:"enforce_test,omitempty" jsonschema:"description=Treat JSON-Patch test operations as assertions instead of skipping them"`
}

// KeybindingSectionConfig maps action names (e.g., "save_as", "undo") to lists of key combinations.
type KeybindingSectionConfig map[string][]string

// KeybindingsConfig defines custom keybindings.
type KeybindingsConfig struct {
	Editor KeybindingSectionConfig `yaml:"editor,omitempty" toml:"editor,omitempty" jsonschema:"description=Editor keybindings keyed by snake_case action name such as save_as or nudge_left"`
}

// Config is the sheetsync configuration file.
type Config struct {
	Version     string             `yaml:"version" toml:"version" jsonschema:"description=Configuration version (e.g. 1.0)"`
	Backend     *BackendConfig     `yaml:"backend,omitempty" toml:"backend,omitempty" jsonschema:"description=Backend connection settings"`
	Patch       *PatchConfig       `yaml:"patch,omitempty" toml:"patch,omitempty" jsonschema:"description=Patch application settings"`
	Keybindings *KeybindingsConfig `yaml:"keybindings,omitempty" toml:"keybindings,omitempty" jsonschema:"description=Custom keybinding overrides"`

	// Extensions captures all other top-level keys, such as the logging section.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" jsonschema:"-"`
}

// DefaultDialTimeout is used when backend.dial_timeout is unset or invalid.
const DefaultDialTimeout = 2 * time.Second

// knownSections lists the top-level keys that are not extensions.
var knownSections = map[string]bool{
	"version":     true,
	"backend":     true,
	"patch":       true,
	"keybindings": true,
}

// UnmarshalTOML decodes a TOML document. go-toml has no inline map support,
// so unknown top-level tables are collected into Extensions by hand.
func (c *Config) UnmarshalTOML(data []byte) error {
	type plain Config
	var known plain
	if err := toml.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Config(known)
	for key, value := range raw {
		if knownSections[key] {
			continue
		}
		if c.Extensions == nil {
			c.Extensions = make(map[string]interface{})
		}
		c.Extensions[key] = value
	}
	return nil
}

// SetDefaults fills in unset values.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Backend == nil {
		c.Backend = &BackendConfig{}
	}
	if c.Backend.Transport == "" {
		c.Backend.Transport = TransportUnix
	}
	if c.Patch == nil {
		c.Patch = &PatchConfig{}
	}
	if c.Keybindings == nil {
		c.Keybindings = &KeybindingsConfig{}
	}
}

// UnmarshalExtension decodes a specific extension's configuration into the
// provided target struct. The target must be a pointer. A missing key leaves
// the target untouched.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
