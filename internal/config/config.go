// Package config provides the host settings store for claudegg.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// APIKey is the setting holding the claude.gg secret key.
	APIKey = "rooCode.claudeApiKey"
	// RequestTimeout bounds a host command, as a Go duration string.
	RequestTimeout = "http.timeout"
	// RenderMarkdown enables terminal markdown rendering of replies.
	RenderMarkdown = "output.render"

	// EnvPrefix prefixes environment overrides, e.g. CLAUDEGG_ROOCODE_CLAUDEAPIKEY.
	EnvPrefix = "CLAUDEGG"
)

// Host holds the presentation settings the CLI reads.
type Host struct {
	HTTP   HTTPSettings   `json:"http"   mapstructure:"http"`
	Output OutputSettings `json:"output" mapstructure:"output"`
}

// HTTPSettings configures host-side request limits.
type HTTPSettings struct {
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// OutputSettings configures reply presentation.
type OutputSettings struct {
	Render bool `json:"render" mapstructure:"render"`
}

// Store is a file backed settings store with environment overrides.
// Reads go through v (env, file, defaults); writes persist only file.
type Store struct {
	path string
	v    *viper.Viper
	file *viper.Viper
}

// Open loads settings from path. A missing file yields an empty store.
// A .env file next to path is loaded first; variables already set win.
func Open(path string) (*Store, error) {
	if err := loadDotenv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType(path))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault(RequestTimeout, "0s")
	v.SetDefault(RenderMarkdown, false)

	settings, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("merge settings: %w", err)
	}

	file := viper.New()
	file.SetConfigType(configType(path))
	if err := file.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("merge settings: %w", err)
	}

	return &Store{path: path, v: v, file: file}, nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// GetString returns the string value of key, or "" when unset.
func (s *Store) GetString(key string) string {
	return s.v.GetString(key)
}

// Set stores value under key. Known keys are type checked.
func (s *Store) Set(key, value string) error {
	switch strings.ToLower(key) {
	case strings.ToLower(RenderMarkdown):
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be a boolean: %w", RenderMarkdown, err)
		}
		s.set(key, b)
	case strings.ToLower(RequestTimeout):
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a duration: %w", RequestTimeout, err)
		}
		s.set(key, value)
	default:
		s.set(key, value)
	}
	return nil
}

func (s *Store) set(key string, value any) {
	s.v.Set(key, value)
	s.file.Set(key, value)
}

// Save writes file settings and Set values to the store path.
// Environment overrides and defaults are never persisted.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := s.file.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return os.Chmod(s.path, 0o600)
}

// Host decodes the host presentation settings.
func (s *Store) Host() (Host, error) {
	var h Host
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := s.v.Unmarshal(&h, hook); err != nil {
		return Host{}, fmt.Errorf("parse host settings: %w", err)
	}
	if h.HTTP.Timeout < 0 {
		return Host{}, fmt.Errorf("%s must not be negative", RequestTimeout)
	}
	return h, nil
}

// Mask hides all but the last four characters of secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	const visible = 4
	if len(secret) <= visible*2 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-visible) + secret[len(secret)-visible:]
}

func readFile(path string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("stat settings: %w", err)
	}

	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType(configType(path))
	if err := file.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	settings := file.AllSettings()
	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func loadDotenv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat dotenv: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}
	return nil
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}
