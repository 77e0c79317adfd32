// Package config holds the client configuration and knows how to load it from a profiles file.
package config

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultEndpoint of the datahub API
	DefaultEndpoint = "https://api.datahub.oneconcern.com"

	// DefaultTimeout for a single API request
	DefaultTimeout = 30 * time.Second

	// DefaultProfile is used whenever no profile name is given
	DefaultProfile = "default"
)

// ClientConfig is passed explicitly to every component that talks to the API.
type ClientConfig struct {
	Endpoint         string        `json:"endpoint" yaml:"endpoint" mapstructure:"url"`
	InternalEndpoint string        `json:"internalEndpoint,omitempty" yaml:"internalEndpoint,omitempty" mapstructure:"internal-url"`
	AccessKey        string        `json:"-" yaml:"-" mapstructure:"key"`
	Timeout          time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	Internal         bool          `json:"internal" yaml:"internal" mapstructure:"internal"`
	LogLevel         string        `json:"logLevel" yaml:"logLevel" mapstructure:"log-level"`
}

// Default client configuration, without any access key
func Default() ClientConfig {
	return ClientConfig{
		Endpoint: DefaultEndpoint,
		Timeout:  DefaultTimeout,
		LogLevel: "info",
	}
}

// BaseURL the transport should send requests to
func (c ClientConfig) BaseURL() string {
	if c.Internal && c.InternalEndpoint != "" {
		return strings.TrimRight(c.InternalEndpoint, "/")
	}
	return strings.TrimRight(c.Endpoint, "/")
}

// Validate the configuration
func (c ClientConfig) Validate() error {
	if c.AccessKey == "" {
		return errors.New("an access key is required")
	}
	u, err := url.Parse(c.BaseURL())
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("endpoint must be an http or https URL: " + c.BaseURL())
	}
	return nil
}
