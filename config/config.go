// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Runtime settings loaded from tilemux.toml and TILEMUX_ env vars.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds desktop-level settings.
type Config struct {
	General GeneralConfig
	Pane    PaneConfig
}

// GeneralConfig selects the startup profile and log destination.
type GeneralConfig struct {
	DefaultProfile string `mapstructure:"default_profile"`
	LogFile        string `mapstructure:"log_file"`
}

// PaneConfig bounds the layout engine.
type PaneConfig struct {
	MinWidth   int     `mapstructure:"min_width"`
	MinHeight  int     `mapstructure:"min_height"`
	ResizeStep float64 `mapstructure:"resize_step"`
}

// Root returns the tilemux configuration directory.
func Root() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "tilemux"), nil
}

// Load reads configuration from file and env. Env var overrides use prefix
// TILEMUX_, so TILEMUX_PANE_MIN_WIDTH=30 overrides pane.min_width.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("general.default_profile", "shell")
	v.SetDefault("general.log_file", "")
	v.SetDefault("pane.min_width", 20)
	v.SetDefault("pane.min_height", 8)
	v.SetDefault("pane.resize_step", 0.05)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("TILEMUX_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else if root, err := Root(); err == nil {
		v.AddConfigPath(root)
		v.SetConfigName("tilemux")
	}

	v.SetEnvPrefix("TILEMUX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional, defaults and env cover everything
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
