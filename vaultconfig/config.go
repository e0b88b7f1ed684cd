// Package vaultconfig loads and saves the standalone plaintext config
// file at ~/.securefox/config (spec.md §6): the Git remote URL and the
// sync configuration governing C8. Its default-path-resolution-plus-
// env-override shape follows the teacher's cli/fileconfig.go, adapted
// from TOML to the spec's mandated JSON wire format.
package vaultconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/securefoxd/securefox/vaultmodel"
	"github.com/securefoxd/securefox/vaulterrors"
	"github.com/securefoxd/securefox/vaultstorage"
)

// envConfigPathKey overrides the config file location, independent of
// SECUREFOX_VAULT (which overrides the vault directory).
const envConfigPathKey = "SECUREFOX_CONFIG"

// Config is the decoded shape of ~/.securefox/config.
type Config struct {
	RemoteURL  *string               `json:"remote_url,omitempty"`
	SyncConfig vaultmodel.SyncConfig `json:"sync_config"`

	path string
}

// Default returns an empty config with sync disabled in Manual mode.
func Default() *Config {
	return &Config{
		SyncConfig: vaultmodel.SyncConfig{
			Enabled: false,
			Mode:    vaultmodel.SyncMode{Type: vaultmodel.SyncModeManual},
		},
	}
}

// DefaultPath resolves the config file path: SECUREFOX_CONFIG if set,
// otherwise <vault-dir>/config.
func DefaultPath() (string, error) {
	if p := os.Getenv(envConfigPathKey); p != "" {
		return p, nil
	}

	dir, err := vaultstorage.DefaultDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config"), nil
}

// Load reads and parses the config file at the default path. A
// missing file is not an error: Default() is returned instead, since
// the config file is optional until sync is first configured.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads and parses the config file at an explicit path.
func LoadFrom(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c := Default()
			c.path = path

			return c, nil
		}

		return nil, fmt.Errorf("%w: read config file: %v", vaulterrors.ErrIo, err)
	}

	c := Default()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("%w: parse config file: %v", vaulterrors.ErrSerialization, err)
	}

	c.path = path

	return c, nil
}

// Save writes c as pretty JSON to its loaded path, creating parent
// directories as needed.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}

		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("%w: create config directory: %v", vaulterrors.ErrIo, err)
	}

	out, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal config: %v", vaulterrors.ErrSerialization, err)
	}

	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("%w: write config file: %v", vaulterrors.ErrIo, err)
	}

	c.path = path

	return nil
}

// Path returns the path c was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.path
}
