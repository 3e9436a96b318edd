package storage

import (
	"fmt"
	"os"
)

// Provider names accepted by Config.Provider.
const (
	ProviderLocal = "local"
	ProviderAzure = "azure"
)

// Config selects and parameterizes the document store.
//
// The local provider resolves relative keys against Root (the working
// directory when empty). The azure provider authenticates with
// ConnectionString when set, otherwise with AccountURL and the default Azure
// credential chain.
type Config struct {
	Provider         string `toml:"provider"`
	Root             string `toml:"root"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	Root             string
	ContainerName    string
	ConnectionString string
	AccountURL       string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.ContainerName == "" {
		c.ContainerName = "diagrams"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, field *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.Root, &c.Root)
	set(env.ContainerName, &c.ContainerName)
	set(env.ConnectionString, &c.ConnectionString)
	set(env.AccountURL, &c.AccountURL)
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderLocal:
		return nil
	case ProviderAzure:
		if c.ContainerName == "" {
			return fmt.Errorf("container_name required")
		}
		if c.ConnectionString == "" && c.AccountURL == "" {
			return fmt.Errorf("connection_string or account_url required")
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
}
