package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/AnClark/cygpm-prototype/pkg/errors"
)

const appName = "cygpm"

// EnvConfig names a config file to load when --config is not given.
const EnvConfig = "CYGPM_CONFIG"

// Defaults.
const (
	DefaultLogLevel = "info"
	DefaultAddr     = "127.0.0.1:8370"
	DefaultArch     = "x86_64"
	DefaultCacheTTL = 24 * time.Hour
)

// Config is the cygpm configuration file.
//
//	database = "/var/lib/cygpm/catalog.db"
//	manifest = "/srv/cygwin/x86_64/setup.ini"
//	log_level = "debug"
//
//	[server]
//	addr = ":8370"
//
//	[mirror]
//	url = "https://mirrors.kernel.org/sourceware/cygwin"
//	arch = "x86_64"
//	compression = "zst"
//	cache_ttl = "6h"
type Config struct {
	Database string `toml:"database"`
	Manifest string `toml:"manifest,omitempty"`
	LogLevel string `toml:"log_level"`
	Server   Server `toml:"server"`
	Mirror   Mirror `toml:"mirror"`

	// Source is the file the configuration was read from, if any.
	Source string `toml:"-"`
	// Unknown lists keys in the file that no field accepts.
	Unknown []string `toml:"-"`
}

// Server configures cygpm serve.
type Server struct {
	Addr string `toml:"addr"`
}

// Mirror configures cygpm load --mirror.
type Mirror struct {
	URL         string        `toml:"url,omitempty"`
	Arch        string        `toml:"arch"`
	Compression string        `toml:"compression,omitempty"`
	CacheDir    string        `toml:"cache_dir,omitempty"`
	CacheTTL    time.Duration `toml:"cache_ttl"`
}

// WithDefaults returns a copy of c with every empty setting filled in.
func (c Config) WithDefaults() Config {
	if c.Database == "" {
		if dir, err := DataDir(); err == nil {
			c.Database = filepath.Join(dir, "catalog.db")
		} else {
			c.Database = "catalog.db"
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Mirror.Arch == "" {
		c.Mirror.Arch = DefaultArch
	}
	if c.Mirror.CacheTTL == 0 {
		c.Mirror.CacheTTL = DefaultCacheTTL
	}
	return c
}

// Level parses LogLevel. An empty level is Info.
func (c Config) Level() (log.Level, error) {
	if c.LogLevel == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel, errors.Wrap(errors.ErrCodeInvalidInput, err, "log_level %q", c.LogLevel)
	}
	return lvl, nil
}

// Load reads the configuration. The file is looked up in order:
//  1. path, if not empty
//  2. $CYGPM_CONFIG, if set
//  3. $XDG_CONFIG_HOME/cygpm/config.toml (or ~/.config/cygpm/config.toml)
//
// A file named by path or $CYGPM_CONFIG must exist. The default file is
// optional; without it Load returns an empty Config. Defaults are not
// applied; call [Config.WithDefaults].
func Load(path string) (*Config, error) {
	required := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, "config.toml")
		required = false
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return &Config{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}

	var c Config
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	c.Source = path
	for _, k := range md.Undecoded() {
		c.Unknown = append(c.Unknown, k.String())
	}
	return &c, nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return nil
}

// Save writes c to path, creating parent directories. An existing file is
// not overwritten.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", filepath.Dir(path))
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ConfigDir returns $XDG_CONFIG_HOME/cygpm, or ~/.config/cygpm.
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns $XDG_DATA_HOME/cygpm, or ~/.local/share/cygpm.
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// DefaultPath is the config file Load falls back to.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
