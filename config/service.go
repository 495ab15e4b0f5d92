package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/validation"
)

var environments = []string{"development", "staging", "production"}

// ServiceConfig contains the fields every fetchkit program shares.
// Programs extend it by embedding it in their own config structs:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Client httpclient.Config `yaml:"client" mapstructure:"client"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the embedded ServiceConfig.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Embedding structs should call it first from their own ApplyDefaults.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields. Failures are reported
// together as a *validation.Error.
func (c *ServiceConfig) Validate() error {
	v := validation.New().
		Required("name", c.Name).
		Custom(slices.Contains(environments, c.Environment), "environment",
			"must be one of: "+strings.Join(environments, ", "))
	if err := c.Logging.Validate(); err != nil {
		v.AddError("logging", err.Error())
	}
	if err := v.Err(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
