package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds CLI configuration. Flags override the environment.
type Config struct {
	ServerURL string `env:"CHESSPIE_SERVER" envDefault:"http://localhost:8080"`
	Output    string `env:"CHESSPIE_OUTPUT" envDefault:"text"`
	Verbose   bool   `env:"CHESSPIE_VERBOSE"`
}

// DefaultConfig returns a Config populated from the environment
func DefaultConfig() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
