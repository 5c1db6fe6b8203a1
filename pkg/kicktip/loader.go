package kicktip

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadConfig builds an EngineConfig by layering defaults, an optional
// YAML file and environment variables.
// Order of precedence (low -> high):
//  1. DefaultEngineConfig()
//  2. file (YAML) if KICKTIP_CONFIG is set
//  3. env (prefix KICKTIP_)
func LoadConfig() (*EngineConfig, error) {
	base := DefaultEngineConfig()

	k := koanf.New(".")

	if path := os.Getenv("KICKTIP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Environment variables: KICKTIP_K_FACTOR, KICKTIP_CACHE_TTL_MINUTES, ...
	// Keys keep their underscores to match the koanf tags on the struct
	envProvider := env.Provider("KICKTIP_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "kicktip_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The odds weight is derived, never set directly
	cfg.OddsBlendWeight = 1.0 - cfg.StatsBlendWeight

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
