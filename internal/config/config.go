// Package config resolves runtime settings for the winvault CLI.
//
// Sources are layered, later ones taking precedence:
//
//	defaults -> config file (--config, JSON or YAML) -> WINVAULT_* environment -> flags
//
// The Gemini API key is also read from GEMINI_API_KEY or API_KEY.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "WINVAULT"

type Config struct {
	DataDir        string        `mapstructure:"data_dir"`
	DBFile         string        `mapstructure:"db_file"`
	AudioPath      string        `mapstructure:"audio_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Gemini         GeminiConfig  `mapstructure:"gemini"`
	Log            LogConfig     `mapstructure:"log"`
}

type GeminiConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	TranscribeModel string `mapstructure:"transcribe_model"`
	BaseURL         string `mapstructure:"base_url"`
}

// LogConfig selects the logging backend. File "-" means stderr; a relative
// path is placed in the data directory.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Backend string `mapstructure:"backend"`
	File    string `mapstructure:"file"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = DefaultDataDir()
	c.DBFile = "vault.db"
	c.AudioPath = ""
	c.RequestTimeout = 0
	c.Gemini = GeminiConfig{Model: "gemini-3-flash-preview"}
	c.Log = LogConfig{Level: "info", Backend: "slog", File: "winvault.log"}
}

// DefaultDataDir is <user config dir>/winvault, or ./.winvault when the
// platform has no config dir.
func DefaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return ".winvault"
	}
	return filepath.Join(base, "winvault")
}

// DBPath is the SQLite file inside the data dir unless DBFile is absolute.
func (c *Config) DBPath() string {
	return c.inDataDir(c.DBFile)
}

// LogPath is the log file path, or "" for stderr.
func (c *Config) LogPath() string {
	if c.Log.File == "" || c.Log.File == "-" {
		return ""
	}
	return c.inDataDir(c.Log.File)
}

func (c *Config) inDataDir(p string) string {
	if filepath.IsAbs(p) || p == ":memory:" {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// flag name -> config key
var flagKeys = map[string]string{
	"data-dir":         "data_dir",
	"db-file":          "db_file",
	"audio":            "audio_path",
	"timeout":          "request_timeout",
	"model":            "gemini.model",
	"transcribe-model": "gemini.transcribe_model",
	"api-base-url":     "gemini.base_url",
	"log-level":        "log.level",
	"log-backend":      "log.backend",
	"log-file":         "log.file",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP("config", "c", "", "path to a JSON or YAML config file")
	fs.String("data-dir", d.DataDir, "directory holding the vault database and logs")
	fs.String("db-file", d.DBFile, "vault database file (relative to --data-dir)")
	fs.String("audio", d.AudioPath, "audio clip transcribed by the dictate command")
	fs.Duration("timeout", d.RequestTimeout, "timeout for Gemini calls (0 = none)")
	fs.String("model", d.Gemini.Model, "Gemini model for refinement and insights")
	fs.String("transcribe-model", d.Gemini.TranscribeModel, "Gemini model for dictation (default: --model)")
	fs.String("api-base-url", d.Gemini.BaseURL, "override the Gemini API endpoint")
	fs.String("log-level", d.Log.Level, "log level: debug, info, warn, error")
	fs.String("log-backend", d.Log.Backend, "log backend: slog or zap")
	fs.String("log-file", d.Log.File, `log file (relative to --data-dir, "-" for stderr)`)
}

// Load resolves the configuration. fs may be nil, in which case only
// defaults and the environment apply.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	var d Config
	d.LoadDefaults()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("db_file", d.DBFile)
	v.SetDefault("audio_path", d.AudioPath)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("gemini.api_key", d.Gemini.APIKey)
	v.SetDefault("gemini.model", d.Gemini.Model)
	v.SetDefault("gemini.transcribe_model", d.Gemini.TranscribeModel)
	v.SetDefault("gemini.base_url", d.Gemini.BaseURL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.backend", d.Log.Backend)
	v.SetDefault("log.file", d.Log.File)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", envPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, fmt.Errorf("bind api key env: %w", err)
	}

	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", f.Value.String(), err)
			}
		}
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.RequestTimeout < 0 {
		return nil, fmt.Errorf("request_timeout must not be negative, got %s", cfg.RequestTimeout)
	}
	return &cfg, nil
}
