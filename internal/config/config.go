// Package config loads SketchRoom settings from an optional TOML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

const (
	DefaultFile = "sketchroom.toml"
	DefaultPort = 8888
	DefaultRoom = "lobby"
)

type Config struct {
	RelayURL           string `toml:"relay_url"`
	HistoryURL         string `toml:"history_url"`
	Room               string `toml:"room"`
	Token              string `toml:"token"`
	Port               int    `toml:"port"`
	HistoryNewestFirst bool   `toml:"history_newest_first"`
	RedisAddr          string `toml:"redis_addr"`
	Advertise          bool   `toml:"advertise"`
}

func Default() Config {
	return Config{
		Room:      DefaultRoom,
		Port:      DefaultPort,
		Advertise: true,
	}
}

// Load reads the file named by SKETCHROOM_CONFIG, or sketchroom.toml in the
// working directory when it exists, and applies environment overrides.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	path := getenv("SKETCHROOM_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	cfg, err := LoadFile(path)
	switch {
	case err == nil:
		log.Printf("[CONFIG] Loaded %s", path)
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg = Default()
	default:
		return Config{}, err
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile decodes a TOML file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.Printf("[CONFIG] Unknown key %q in %s", key.String(), path)
	}
	if cfg.Room == "" {
		cfg.Room = DefaultRoom
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("SKETCHROOM_RELAY"); v != "" {
		c.RelayURL = v
	}
	if v := getenv("SKETCHROOM_HISTORY"); v != "" {
		c.HistoryURL = v
	}
	if v := getenv("SKETCHROOM_TOKEN"); v != "" {
		c.Token = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}

	if v := getenv("SKETCHROOM_ROOM"); v != "" {
		c.Room = v
	} else {
		log.Printf("[CONFIG] defaulting to room %s", c.Room)
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid PORT %q", v)
		}
		c.Port = port
	} else {
		log.Printf("[CONFIG] defaulting to port %d", c.Port)
	}
	return nil
}

// ListenAddr is the relay listen address for host mode.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
