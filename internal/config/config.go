package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort                = "8080"
	DefaultMaintenanceInterval = 30 * time.Minute
	DefaultRoomTTL             = time.Hour
	DefaultRedisTTL            = time.Hour
	DefaultQuestionTTL         = 10 * time.Minute
	DefaultArchiveBuffer       = 64
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Maintenance struct {
		Interval string `yaml:"interval"`
		RoomTTL  string `yaml:"room_ttl"`
	} `yaml:"maintenance"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		TTL string `yaml:"ttl"`
	} `yaml:"questions"`
	Archive struct {
		Buffer int `yaml:"buffer"`
	} `yaml:"archive"`
}

// Load reads YAML config from path. A missing file yields the zero Config.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ListenPort resolves the port: flag, then PORT env, then server.port, then 8080.
func (c Config) ListenPort(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("PORT"); env != "" {
		return env
	}
	if c.Server.Port != "" {
		return c.Server.Port
	}
	return DefaultPort
}

func (c Config) MaintenanceInterval() time.Duration {
	return TTLDuration(c.Maintenance.Interval, DefaultMaintenanceInterval)
}

func (c Config) RoomTTL() time.Duration {
	return TTLDuration(c.Maintenance.RoomTTL, DefaultRoomTTL)
}

func (c Config) RedisTTL() time.Duration {
	return TTLDuration(c.Redis.TTL, DefaultRedisTTL)
}

func (c Config) QuestionTTL() time.Duration {
	return TTLDuration(c.Questions.TTL, DefaultQuestionTTL)
}

func (c Config) ArchiveBuffer() int {
	if c.Archive.Buffer <= 0 {
		return DefaultArchiveBuffer
	}
	return c.Archive.Buffer
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return fallback
}
