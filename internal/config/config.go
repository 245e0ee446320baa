// Package config loads the client configuration from an optional YAML file
// layered under flag/environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is everything the client needs to reach its external collaborators.
type Config struct {
	// APIURL is the backend base address; the client appends "/api".
	APIURL string `yaml:"apiUrl"`

	Razorpay struct {
		// KeyID is the gateway's public key embedded in the checkout page.
		KeyID string `yaml:"keyId"`
	} `yaml:"razorpay"`

	Cloudinary struct {
		CloudName    string `yaml:"cloudName"`
		UploadPreset string `yaml:"uploadPreset"`
	} `yaml:"cloudinary"`
}

// DefaultPath is the config file location under the user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".shopctl", "config.yaml"), nil
}

// Load reads the config file at path. A missing file yields the zero config;
// a malformed file is an error.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// BaseURL returns the API base the client should use, applying the default
// local backend address when nothing is configured.
func (c *Config) BaseURL() string {
	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = "http://localhost:5000"
	}
	return apiURL + "/api"
}
