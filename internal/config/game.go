package config

import (
	"fmt"

	"github.com/tomz197/balanceball/internal/effect"
	simconfig "github.com/tomz197/balanceball/internal/sim/config"
)

// LoadGame returns the default simulation tuning with the power-ups listed in
// BALANCE_DISABLED_POWERUPS switched off and the base platform width from
// BALANCE_PLATFORM_WIDTH (short, normal or wide). The result is validated.
func LoadGame() (*simconfig.Config, error) {
	cfg := simconfig.Default()

	settings, err := effect.ParseDisabled(GetEnv("BALANCE_DISABLED_POWERUPS", ""))
	if err != nil {
		return nil, fmt.Errorf("BALANCE_DISABLED_POWERUPS: %w", err)
	}
	cfg.Settings = settings

	size, err := simconfig.ParsePlatformSize(GetEnv("BALANCE_PLATFORM_WIDTH", ""))
	if err != nil {
		return nil, fmt.Errorf("BALANCE_PLATFORM_WIDTH: %w", err)
	}
	cfg.PlatformSize = size

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	return cfg, nil
}
