package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces environment overrides, e.g. REFUNDMINT_RPC_PORT.
const EnvPrefix = "REFUNDMINT_"

// ApplyEnv overlays REFUNDMINT_* environment variables onto cfg. Fields
// whose variable is unset keep their current value.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
