/*
Package config manages the TOML config for seekbench.

	[server]
	max_text_len = 1048576
	max_pattern_len = 4096
	reload_every = 100

	[hash]
	variant = "modular"
	base = 256
	modulus = 101

	[trace]
	max_steps = 200000
	cache_entries = 32
	page_size = 256

	[http]
	addr = ":5000"
	allow_origin = "*"

	[cli]
	default_algorithm = "kmp"
	show_trace = false
	max_trace_rows = 64

A missing file is created with the defaults. A file that fails to decode is
salvaged section by section; whatever cannot be read keeps its default.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/seekbench/internal/utils"
	"github.com/bastiangx/seekbench/pkg/match"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Hash   HashConfig   `toml:"hash"`
	Trace  TraceConfig  `toml:"trace"`
	HTTP   HTTPConfig   `toml:"http"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig holds request limits shared by the IPC and HTTP servers.
type ServerConfig struct {
	MaxTextLen    int `toml:"max_text_len"`
	MaxPatternLen int `toml:"max_pattern_len"`
	ReloadEvery   int `toml:"reload_every"`
}

// HashConfig selects the Rabin-Karp window hash.
type HashConfig struct {
	Variant string `toml:"variant"`
	Base    int    `toml:"base"`
	Modulus int    `toml:"modulus"`
}

// TraceConfig bounds trace materialization and the replay cache.
type TraceConfig struct {
	MaxSteps     int `toml:"max_steps"`
	CacheEntries int `toml:"cache_entries"`
	PageSize     int `toml:"page_size"`
}

// HTTPConfig holds the HTTP listener options.
type HTTPConfig struct {
	Addr        string `toml:"addr"`
	AllowOrigin string `toml:"allow_origin"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultAlgorithm string `toml:"default_algorithm"`
	ShowTrace        bool   `toml:"show_trace"`
	MaxTraceRows     int    `toml:"max_trace_rows"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxTextLen:    1 << 20,
			MaxPatternLen: 4096,
			ReloadEvery:   100,
		},
		Hash: HashConfig{
			Variant: match.HashModular.String(),
			Base:    match.DefaultBase,
			Modulus: match.DefaultModulus,
		},
		Trace: TraceConfig{
			MaxSteps:     200000,
			CacheEntries: 32,
			PageSize:     256,
		},
		HTTP: HTTPConfig{
			Addr:        ":5000",
			AllowOrigin: "*",
		},
		CLI: CliConfig{
			DefaultAlgorithm: match.KMP.String(),
			ShowTrace:        false,
			MaxTraceRows:     64,
		},
	}
}

// MatchHash converts the hash section into a validated match.HashConfig.
func (c *Config) MatchHash() (match.HashConfig, error) {
	variant, err := match.ParseHashVariant(c.Hash.Variant)
	if err != nil {
		return match.HashConfig{}, err
	}
	hc := match.HashConfig{Variant: variant, Base: int64(c.Hash.Base), Modulus: int64(c.Hash.Modulus)}
	if err := hc.Validate(); err != nil {
		return match.HashConfig{}, fmt.Errorf("config [hash]: %w", err)
	}
	return hc, nil
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/seekbench
// 2. ~/Library/Application Support/seekbench (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return executableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "seekbench")
	if utils.DirWritable(primaryPath) {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "seekbench")
	if utils.DirWritable(macOSPath) {
		return macOSPath, nil
	}
	return executableDir()
}

func executableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from the -config flag
// 2. Default path: [UserConfigDir]/seekbench/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Invalid hash settings are replaced by
// the defaults so that a bad edit never stops the server.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config = tryPartialParse(configPath)
	}
	if _, err := config.MatchHash(); err != nil {
		log.Warnf("Invalid [hash] section in %s: %v. Using default hash...", configPath, err)
		config.Hash = DefaultConfig().Hash
	}
	return config, nil
}

// tryPartialParse salvages every section that can still be decoded.
func tryPartialParse(configPath string) *Config {
	config := DefaultConfig()

	table, err := utils.ReadTable(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config
	}

	if s, ok := table.Section("server"); ok {
		utils.Assign(s, "max_text_len", &config.Server.MaxTextLen)
		utils.Assign(s, "max_pattern_len", &config.Server.MaxPatternLen)
		utils.Assign(s, "reload_every", &config.Server.ReloadEvery)
	}
	if s, ok := table.Section("hash"); ok {
		utils.Assign(s, "variant", &config.Hash.Variant)
		utils.Assign(s, "base", &config.Hash.Base)
		utils.Assign(s, "modulus", &config.Hash.Modulus)
	}
	if s, ok := table.Section("trace"); ok {
		utils.Assign(s, "max_steps", &config.Trace.MaxSteps)
		utils.Assign(s, "cache_entries", &config.Trace.CacheEntries)
		utils.Assign(s, "page_size", &config.Trace.PageSize)
	}
	if s, ok := table.Section("http"); ok {
		utils.Assign(s, "addr", &config.HTTP.Addr)
		utils.Assign(s, "allow_origin", &config.HTTP.AllowOrigin)
	}
	if s, ok := table.Section("cli"); ok {
		utils.Assign(s, "default_algorithm", &config.CLI.DefaultAlgorithm)
		utils.Assign(s, "show_trace", &config.CLI.ShowTrace)
		utils.Assign(s, "max_trace_rows", &config.CLI.MaxTraceRows)
	}
	return config
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// UpdateHash changes the hash section, validates it and saves the file.
// Nil arguments keep their current value. Nothing changes on error.
func (c *Config) UpdateHash(configPath string, variant *string, base, modulus *int) error {
	next := c.Hash
	if variant != nil {
		next.Variant = *variant
	}
	if base != nil {
		next.Base = *base
	}
	if modulus != nil {
		next.Modulus = *modulus
	}

	candidate := *c
	candidate.Hash = next
	if _, err := candidate.MatchHash(); err != nil {
		return err
	}
	c.Hash = next
	if configPath == "" {
		return nil
	}
	return SaveConfig(c, configPath)
}
