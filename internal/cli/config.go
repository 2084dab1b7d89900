package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pinboard/internal/server"
	"github.com/matzehuels/pinboard/pkg/board"
	perrors "github.com/matzehuels/pinboard/pkg/errors"
)

// Cache backends selectable in the config file.
const (
	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// Config is the optional TOML configuration file. Board settings act as
// defaults beneath each board file's own config; flags override both.
//
//	[board]
//	columns = 3
//	width = 960
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//	images = "/srv/pins"
type Config struct {
	Board  board.Config `toml:"board"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the dimensions cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	RedisURL string `toml:"redis_url"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr   string `toml:"addr"`
	Images string `toml:"images"`
}

func defaultConfig() Config {
	return Config{
		Board:  board.DefaultConfig(),
		Cache:  CacheConfig{Backend: cacheBackendFile},
		Server: ServerConfig{Addr: server.DefaultAddr},
	}
}

// loadConfig reads the config file at path on top of the defaults. An
// empty path reads the default location if a file exists there.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		if _, err := os.Stat(p); err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, perrors.New(perrors.ErrCodeInvalidConfig, "config file %s: unknown keys %v", path, undecoded)
	}

	switch cfg.Cache.Backend {
	case cacheBackendFile, cacheBackendNone:
	case cacheBackendRedis:
		if cfg.Cache.RedisURL == "" {
			return cfg, perrors.New(perrors.ErrCodeInvalidConfig, "cache backend redis requires redis_url")
		}
	default:
		return cfg, perrors.New(perrors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Cache.Backend)
	}
	return cfg, nil
}

// configPath returns the default config file location using the XDG
// standard (~/.config/pinboard/config.toml).
func configPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
