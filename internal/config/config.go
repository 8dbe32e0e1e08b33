// Copyright 2026 The AccessHub Authors, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cm   *ConfigManager
	once sync.Once

	// Conf holds the loaded portal configuration for the process.
	Conf *Flags
)

// Flags is the full portal configuration, loaded from the yaml config
// file with flag and default fallbacks.
type Flags struct {
	Listen   string         `mapstructure:"listen"`
	LogLevel string         `mapstructure:"log-level"`
	BaseURL  string         `mapstructure:"base-url"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	OIDC     OIDCConfig     `mapstructure:"oidc"`
	Session  SessionConfig  `mapstructure:"session"`

	// AdminRole is the reserved role name that grants blanket authority.
	// It is data, not a flag on the user; compared by exact string match.
	AdminRole string `mapstructure:"admin-role"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // "mysql" or "sqlite"
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Path     string `mapstructure:"path"` // sqlite only
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type OIDCConfig struct {
	Issuer       string `mapstructure:"issuer"`
	ClientID     string `mapstructure:"client-id"`
	ClientSecret string `mapstructure:"client-secret"`
	RedirectURL  string `mapstructure:"redirect-url"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
}

type ConfigManager struct {
	v *viper.Viper
}

// NewConfigManager returns the process ConfigManager instance.
func NewConfigManager() *ConfigManager {
	once.Do(func() {
		cm = &ConfigManager{v: viper.New()}
	})
	return cm
}

// Viper returns the underlying viper instance.
func (cm *ConfigManager) Viper() *viper.Viper {
	return cm.v
}

// LoadConf reads the config file, creating one from the defaults when it
// does not exist, binds any flags set on cmd and fills Conf.
func (cm *ConfigManager) LoadConf(cmd *cobra.Command) error {
	v := cm.v
	v.SetConfigType("yaml")

	v.SetDefault("listen", ":8080")
	v.SetDefault("log-level", "info")
	v.SetDefault("base-url", "http://localhost:8080")
	v.SetDefault("admin-role", "システム管理者")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "accesshub.db")
	v.SetDefault("database.port", 3306)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", `"Service Portal" <noreply@example.com>`)
	v.SetDefault("session.secret", "accesshub-dev-secret")

	configName := GetConfigFilePath()
	v.SetConfigFile(configName)
	if _, err := os.Stat(configName); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configName), 0o700); err != nil {
			return fmt.Errorf("create config dir: %v", err)
		}
		// SafeWriteConfigAs materializes the defaults; it errors on an
		// existing file, which the stat guard already excludes.
		if err := v.SafeWriteConfigAs(configName); err != nil {
			return fmt.Errorf("create config file: %v", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %v", configName, err)
	}

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
	}

	Conf = &Flags{}
	return v.Unmarshal(Conf)
}

// GetConfigFilePath returns the config file location, honoring
// ACCESSHUB_CONFIG when set.
func GetConfigFilePath() string {
	if p := os.Getenv("ACCESSHUB_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "accesshub.yaml"
	}
	return filepath.Join(home, ".accesshub", "config.yaml")
}
