package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CLUBBOT_"

// Environment variable naming the optional YAML file
const fileEnv = "CLUBBOT_CONFIG"

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New())
//  2. the YAML file named by CLUBBOT_CONFIG, if set
//  3. env vars prefixed with CLUBBOT_, where a double underscore
//     separates levels: CLUBBOT_DISCORD__TOKEN -> discord.token
//
// Secrets given as *_file paths are read afterwards.
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv(fileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("could not load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("could not load config from environment: %w", err)
	}

	// Unmarshal into a copy. Lists are replaced as a whole rather than
	// merged element by element with the defaults
	cfg := *base
	cfg.RateLimits, cfg.RolePrecedence = nil, nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}
	if len(cfg.RateLimits) == 0 {
		cfg.RateLimits = base.RateLimits
	}
	if len(cfg.RolePrecedence) == 0 {
		cfg.RolePrecedence = base.RolePrecedence
	}

	if err := cfg.readSecrets(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (config *Config) readSecrets() error {
	secrets := []struct {
		value *string
		path  string
	}{
		{&config.Discord.Token, config.Discord.TokenFile},
		{&config.BrawlAPI.Key, config.BrawlAPI.KeyFile},
	}
	for _, secret := range secrets {
		if *secret.value != "" || secret.path == "" {
			continue
		}
		data, err := os.ReadFile(secret.path)
		if err != nil {
			return fmt.Errorf("could not read secret file %s: %w", secret.path, err)
		}
		*secret.value = strings.TrimSpace(string(data))
	}
	return nil
}

// Validate reports every missing or inconsistent key at once
func (config *Config) Validate() error {
	var errs []error
	required := map[string]string{
		"club_tag":         config.ClubTag,
		"discord.token":    config.Discord.Token,
		"discord.guild_id": config.Discord.GuildID,
		"brawlapi.key":     config.BrawlAPI.Key,
	}
	for _, key := range []string{"club_tag", "discord.token", "discord.guild_id", "brawlapi.key"} {
		if required[key] == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", key))
		}
	}
	if config.MatchCutoff < 0 || config.MatchCutoff > 100 {
		errs = append(errs, fmt.Errorf("match_cutoff must be between 0 and 100, got %d", config.MatchCutoff))
	}
	if config.ActivityWindow <= 0 {
		errs = append(errs, errors.New("activity_window must be positive"))
	}
	intervals := map[string]int64{
		"intervals.members":  int64(config.Intervals.Members),
		"intervals.activity": int64(config.Intervals.Activity),
		"intervals.club":     int64(config.Intervals.Club),
	}
	for _, key := range []string{"intervals.members", "intervals.activity", "intervals.club"} {
		if intervals[key] <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", key))
		}
	}
	if len(config.RateLimits) == 0 {
		errs = append(errs, errors.New("rate_limits must not be empty"))
	}
	for i, restriction := range config.RateLimits {
		if restriction.Requests <= 0 {
			errs = append(errs, fmt.Errorf("rate_limits[%d].requests must be positive, got %d", i, restriction.Requests))
		}
		if restriction.Duration <= 0 {
			errs = append(errs, fmt.Errorf("rate_limits[%d].duration must be positive, got %s", i, restriction.Duration))
		}
	}
	if config.TeamSize <= 0 {
		errs = append(errs, errors.New("team_size must be positive"))
	}
	if config.CommandPrefix == "" {
		errs = append(errs, errors.New("command_prefix must not be empty"))
	}
	return errors.Join(errs...)
}
