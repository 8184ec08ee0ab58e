package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	internal "github.com/ZanzyTHEbar/file-lens/flens"
	"github.com/ZanzyTHEbar/file-lens/flens/index"
)

const maxWorkers = 1024

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	RootDir    string           `mapstructure:"rootDir"`
	Timezone   string           `mapstructure:"timezone"`
	Index      IndexConfig      `mapstructure:"index"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
}

// IndexConfig controls how the root directory is walked.
type IndexConfig struct {
	OnError    string `mapstructure:"onError"`
	IgnoreFile string `mapstructure:"ignoreFile"`
	Workers    int    `mapstructure:"workers"`
}

// CacheConfig controls the decoded-table cache.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttlSeconds"`
	Capacity   int  `mapstructure:"capacity"`
}

type NavigationConfig struct {
	Live bool `mapstructure:"live"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// LoadConfig reads configuration from file or environment variables. A
// missing config file is not an error; defaults apply.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(internal.DefaultSystemConfig)
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName(internal.DefaultConfigName)
		v.SetConfigType("yaml")
	}

	v.SetDefault("rootDir", ".")
	v.SetDefault("timezone", "Local")
	v.SetDefault("index.onError", index.PolicyAbort.String())
	v.SetDefault("index.ignoreFile", "")
	v.SetDefault("index.workers", 0)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttlSeconds", internal.DefaultCacheTTL)
	v.SetDefault("cache.capacity", internal.DefaultCacheCapacity)
	v.SetDefault("navigation.live", false)
	v.SetDefault("server.addr", internal.DefaultServerAddr)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // index.onError becomes INDEX_ONERROR
	if err := v.BindEnv("rootDir", internal.DefaultRootEnv, "ROOTDIR"); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", internal.DefaultRootEnv, err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(c.RootDir) == "" {
		result = multierror.Append(result, errors.New("rootDir must not be empty"))
	}
	if _, err := c.Location(); err != nil {
		result = multierror.Append(result, err)
	}
	if _, err := c.Policy(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Index.Workers < 0 || c.Index.Workers > maxWorkers {
		result = multierror.Append(result, fmt.Errorf("index.workers must be between 0 and %d, got %d", maxWorkers, c.Index.Workers))
	}
	if c.Cache.Enabled && c.Cache.TTLSeconds <= 0 {
		result = multierror.Append(result, fmt.Errorf("cache.ttlSeconds must be positive, got %d", c.Cache.TTLSeconds))
	}
	if c.Cache.Capacity < 0 {
		result = multierror.Append(result, fmt.Errorf("cache.capacity must not be negative, got %d", c.Cache.Capacity))
	}

	return result.ErrorOrNil()
}

// Location resolves Timezone; "" and "Local" mean the process zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Policy() (index.ErrorPolicy, error) {
	return index.ParsePolicy(c.Index.OnError)
}

// CacheTTL is the configured cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// AbsRoot returns RootDir as an absolute path.
func (c *Config) AbsRoot() (string, error) {
	return filepath.Abs(c.RootDir)
}
