// Package config resolves console connection settings from a YAML file
// and environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// Config holds what a remote query needs to reach the console. The
// environment variables TWISTLOCK_URL, TWISTLOCK_USER and
// TWISTLOCK_PASSWORD override the file values.
type Config struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DefaultPath returns ~/.twistql.yaml, falling back to the working
// directory when the home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".twistql.yaml"
	}
	return filepath.Join(home, ".twistql.yaml")
}

// Load reads the config file if it exists and applies environment
// overrides. A missing file is not an error; a broken one is.
func Load(appFs afero.Fs, path string) (Config, error) {
	var c Config

	ok, err := afero.Exists(appFs, path)
	if err != nil {
		return Config{}, xerrors.Errorf("unable to stat %s: %w", path, err)
	}
	if ok {
		b, err := afero.ReadFile(appFs, path)
		if err != nil {
			return Config{}, xerrors.Errorf("unable to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, xerrors.Errorf("unable to parse %s: %w", path, err)
		}
	}

	c.URL = lookupEnv("TWISTLOCK_URL", c.URL)
	c.Username = lookupEnv("TWISTLOCK_USER", c.Username)
	c.Password = lookupEnv("TWISTLOCK_PASSWORD", c.Password)
	return c, nil
}

// Validate checks that remote operations have everything they need.
func (c Config) Validate() error {
	if c.URL == "" {
		return xerrors.New("console URL must be set (config url or TWISTLOCK_URL)")
	}
	if c.Username == "" || c.Password == "" {
		return xerrors.New("console credentials must be set (config username/password or TWISTLOCK_USER/TWISTLOCK_PASSWORD)")
	}
	return nil
}

func lookupEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultValue
}
