// Package config loads feeds-core configuration from a TOML file (the
// teacher's cmd/utils loads node config the same way via naoina/toml) over
// built-in defaults. cmd/feedsnode takes the file's path from its --config
// flag; no CLI flag overrides an individual value.
package config

import (
	"os"
	"time"

	"github.com/naoina/toml"
)

// Feeds carries the configuration keys named in spec §6.
type Feeds struct {
	// MaxMessagesPerResponse bounds getFeedMessagesById pagination. Default 100.
	MaxMessagesPerResponse int

	// GroupMaxMembers is the hard cap a rotation fails above. Default 512.
	GroupMaxMembers int

	// KeyRotationGraceBlocks is the inclusive post-rotation window during
	// which the previous generation is still accepted. Default 4 (a 5-block
	// window including the rotation block itself, per spec §4.4/§8).
	KeyRotationGraceBlocks uint64

	// RejoinCooldownBlocks is the minimum gap between a self-leave and a
	// self-rejoin of a public group. Default 100.
	RejoinCooldownBlocks uint64
}

type Storage struct {
	// MySQLDSN is the durable store's connection string (gorm/mysql).
	MySQLDSN string
	// RedisAddr is the shared cache's address (go-redis/v7).
	RedisAddr string
}

type EventsConfig struct {
	KafkaBrokers []string
	TopicPrefix  string
}

type AttachmentsConfig struct {
	TempDir             string
	OrphanCleanupEvery  time.Duration
	OrphanCleanupOlderThan time.Duration
}

type APIConfig struct {
	GRPCAddr string
	HTTPAddr string
}

type Config struct {
	Feeds       Feeds
	Storage     Storage
	Events      EventsConfig
	Attachments AttachmentsConfig
	API         APIConfig
}

// Default returns the configuration with every spec-mandated default filled
// in (spec §6: MaxMessagesPerResponse=100, group cap 512, grace 5 blocks
// inclusive i.e. 4 blocks past the rotation block, cooldown 100 blocks).
func Default() *Config {
	return &Config{
		Feeds: Feeds{
			MaxMessagesPerResponse:  100,
			GroupMaxMembers:         512,
			KeyRotationGraceBlocks:  4,
			RejoinCooldownBlocks:    100,
		},
		Attachments: AttachmentsConfig{
			OrphanCleanupEvery:     1 * time.Hour,
			OrphanCleanupOlderThan: 24 * time.Hour,
		},
	}
}

// Load reads a TOML file at path over the defaults, the way the teacher's
// node config layers a file over built-in defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
