// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config gathers the server configuration from command line flags,
// environment variables, and an optional configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/thediveo/ssrserve"
)

// Configuration keys; these double as flag names.
const (
	KeyConfig    = "config"
	KeyMode      = "mode"
	KeyPort      = "port"
	KeyRoot      = "root"
	KeyBuildDir  = "build-dir"
	KeySourceDir = "source-dir"
	KeyAssetsDir = "assets-dir"
	KeyLogLevel  = "log-level"
	KeyLogFormat = "log-format"
)

// EnvPrefix prefixes the environment variables for all keys except the mode,
// which uses ssrserve.ModeEnvVar.
const EnvPrefix = "SSRSERVE"

// FileName is the optional configuration file inside the root directory.
const FileName = "ssrserve.yaml"

// DefaultPort is the port to listen on unless told otherwise.
const DefaultPort = 3000

// Config is the immutable configuration of a server process.
type Config struct {
	Mode      ssrserve.Mode
	Port      int
	Root      string // project root directory.
	BuildDir  string // build output directory, relative to Root unless absolute.
	SourceDir string // server bundle sources, relative to Root unless absolute.
	AssetsDir string // asset directory inside the client build output.
	LogLevel  slog.Level
	LogFormat string // "text" or "json".
}

// ClientDir returns the directory of the client build output.
func (c *Config) ClientDir() string {
	return filepath.Join(c.dir(c.BuildDir), "client")
}

// ServerDir returns the directory of the prebuilt server bundle.
func (c *Config) ServerDir() string {
	return filepath.Join(c.dir(c.BuildDir), "server")
}

// SourceBundleDir returns the directory of the server bundle sources.
func (c *Config) SourceBundleDir() string {
	return c.dir(c.SourceDir)
}

func (c *Config) dir(d string) string {
	if filepath.IsAbs(d) {
		return d
	}
	return filepath.Join(c.Root, d)
}

// NewViper returns a viper instance with all defaults set and environment
// variables bound.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyMode, ssrserve.Development.String())
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyRoot, ".")
	v.SetDefault(KeyBuildDir, "dist")
	v.SetDefault(KeySourceDir, "src")
	v.SetDefault(KeyAssetsDir, "assets")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyMode, ssrserve.ModeEnvVar)
	return v
}

// Load reads the optional configuration file and returns the resulting
// configuration. Without an explicitly specified configuration file, an
// "ssrserve.yaml" in the root directory is used if present.
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString(KeyRoot))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("cannot read configuration: %w", err)
		}
	}

	cfg := &Config{
		Mode:      ssrserve.ParseMode(v.GetString(KeyMode)),
		Port:      v.GetInt(KeyPort),
		Root:      v.GetString(KeyRoot),
		BuildDir:  v.GetString(KeyBuildDir),
		SourceDir: v.GetString(KeySourceDir),
		AssetsDir: v.GetString(KeyAssetsDir),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
	}
	level, err := ParseLogLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot possibly work.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &Error{Key: KeyPort, Message: fmt.Sprintf("invalid port %d", c.Port)}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return &Error{Key: KeyLogFormat, Message: fmt.Sprintf("unknown log format %q", c.LogFormat)}
	}
	if c.Root == "" {
		return &Error{Key: KeyRoot, Message: "empty root directory"}
	}
	return nil
}

// ParseLogLevel parses a log level name (debug, info, warn, error).
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, &Error{Key: KeyLogLevel, Message: fmt.Sprintf("unknown log level %q", s)}
}

// NewLogger returns a logger writing to w as configured.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Error represents a configuration error.
type Error struct {
	Key     string
	Message string
}

func (e *Error) Error() string {
	return "configuration error in '" + e.Key + "': " + e.Message
}
