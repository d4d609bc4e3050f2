package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

/*
[storage]
data_dir      = ./data

[buffer]
capacity      = 16
strategy      = lru

[index]
pool_capacity = 1000
default_n     = 2

[logs]
level         = info
*/
type Config struct {
	Raw *ini.File

	DataDir string

	// page cache used by callers that pin pages directly
	PoolCapacity int
	Strategy     string

	// page cache attached to every opened index
	IndexPoolCapacity int
	IndexStrategy     string
	DefaultN          int

	LogLevel string
}

func Default() *Config {
	return &Config{
		Raw:               ini.Empty(),
		DataDir:           ".",
		PoolCapacity:      16,
		Strategy:          "lru",
		IndexPoolCapacity: 1000,
		IndexStrategy:     "fifo",
		DefaultN:          2,
		LogLevel:          "info",
	}
}

// Load reads the ini file at path on top of the defaults. A missing file is not an error, it yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s cannot be parsed", path)
	}

	cfg.Raw = f
	cfg.parseStorage(f.Section("storage"))
	cfg.parseBuffer(f.Section("buffer"))
	cfg.parseIndex(f.Section("index"))
	cfg.parseLogs(f.Section("logs"))

	if cfg.PoolCapacity <= 0 || cfg.IndexPoolCapacity <= 0 {
		return nil, errors.Errorf("config %s: pool capacities must be positive", path)
	}
	return cfg, nil
}

// Path joins name under the data directory.
func (cfg *Config) Path(name string) string {
	if filepath.IsAbs(name) || cfg.DataDir == "" {
		return name
	}
	return filepath.Join(cfg.DataDir, name)
}

func (cfg *Config) parseStorage(section *ini.Section) {
	cfg.DataDir = section.Key("data_dir").MustString(cfg.DataDir)
}

func (cfg *Config) parseBuffer(section *ini.Section) {
	cfg.PoolCapacity = section.Key("capacity").MustInt(cfg.PoolCapacity)
	cfg.Strategy = section.Key("strategy").MustString(cfg.Strategy)
}

func (cfg *Config) parseIndex(section *ini.Section) {
	cfg.IndexPoolCapacity = section.Key("pool_capacity").MustInt(cfg.IndexPoolCapacity)
	cfg.IndexStrategy = section.Key("strategy").MustString(cfg.IndexStrategy)
	cfg.DefaultN = section.Key("default_n").MustInt(cfg.DefaultN)
}

func (cfg *Config) parseLogs(section *ini.Section) {
	cfg.LogLevel = section.Key("level").MustString(cfg.LogLevel)
}
