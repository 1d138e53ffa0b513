// Package config holds the configuration of the bot and its loading from
// defaults, an optional YAML file and the environment.
package config

import (
	"clubbot/internal/club"
	"clubbot/internal/common"
	"time"
)

// A message the bot keeps up to date
type MessageRef struct {
	ChannelID string `koanf:"channel_id"`
	MessageID string `koanf:"message_id"`
}

type Discord struct {
	Token     string `koanf:"token"`
	TokenFile string `koanf:"token_file"`
	GuildID   string `koanf:"guild_id"`
}

type Messages struct {
	Members  MessageRef `koanf:"members"`
	Activity MessageRef `koanf:"activity"`
	Stats    MessageRef `koanf:"stats"`
	Teams    MessageRef `koanf:"teams"`
}

type BrawlAPI struct {
	OfficialURL string        `koanf:"official_url"`
	BrawlapiURL string        `koanf:"brawlapi_url"`
	Key         string        `koanf:"key"`
	KeyFile     string        `koanf:"key_file"`
	Timeout     time.Duration `koanf:"timeout"`
	Backoff     time.Duration `koanf:"backoff"`
}

type Intervals struct {
	Members  time.Duration `koanf:"members"`
	Activity time.Duration `koanf:"activity"`
	Club     time.Duration `koanf:"club"`
}

type Cursor struct {
	Backend   string `koanf:"backend"`
	Path      string `koanf:"path"`
	RedisAddr string `koanf:"redis_addr"`
	Key       string `koanf:"key"`
}

type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// ClubTag is the tag of the club the bot looks after, with or without '#'.
	ClubTag string `koanf:"club_tag"`

	Discord          Discord  `koanf:"discord"`
	Messages         Messages `koanf:"messages"`
	ClubLogChannelID string   `koanf:"club_log_channel_id"`
	BrawlAPI         BrawlAPI `koanf:"brawlapi"`

	// RateLimits applies to each of the game APIs separately.
	RateLimits []common.Restriction `koanf:"rate_limits"`

	Intervals Intervals `koanf:"intervals"`

	// MatchCutoff is the similarity a name must exceed to be matched.
	MatchCutoff    int           `koanf:"match_cutoff"`
	ActivityWindow time.Duration `koanf:"activity_window"`
	RolePrecedence []string      `koanf:"role_precedence"`

	TeamCount int `koanf:"team_count"`
	TeamSize  int `koanf:"team_size"`

	Cursor Cursor `koanf:"cursor"`

	// MetricsAddr serves /metrics when not empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	CommandPrefix string `koanf:"command_prefix"`
}

// New creates a Config holding the defaults
func New() *Config {
	precedence := make([]string, len(club.DefaultPrecedence))
	for i, name := range club.DefaultPrecedence {
		precedence[i] = string(name)
	}
	return &Config{
		LogLevel: "info",
		BrawlAPI: BrawlAPI{
			Timeout: 20 * time.Second,
			Backoff: time.Minute,
		},
		RateLimits: []common.Restriction{
			{Requests: 10, Duration: time.Second},
		},
		Intervals: Intervals{
			Members:  5 * time.Minute,
			Activity: 6 * time.Hour,
			Club:     5 * time.Minute,
		},
		MatchCutoff:    75,
		ActivityWindow: club.DefaultActivityWindow,
		RolePrecedence: precedence,
		TeamCount:      10,
		TeamSize:       3,
		Cursor: Cursor{
			Backend: "file",
			Path:    "clublog_timestamp.txt",
		},
		CommandPrefix: "!",
	}
}

func (config *Config) Precedence() []club.RoleName {
	precedence := make([]club.RoleName, len(config.RolePrecedence))
	for i, name := range config.RolePrecedence {
		precedence[i] = club.RoleName(name)
	}
	return precedence
}
