package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type SessionConfig struct {
	TTLHours   int    `mapstructure:"ttl_hours"`
	CookieName string `mapstructure:"cookie_name"`
}

type SecurityConfig struct {
	BcryptCost              int    `mapstructure:"bcrypt_cost"`
	RootUsername            string `mapstructure:"root_username"`
	RootPassword            string `mapstructure:"root_password"`
	ForceRootPasswordChange bool   `mapstructure:"force_root_password_change"`
	TicketSecret            string `mapstructure:"ticket_secret"`
	TicketTTLMinutes        int    `mapstructure:"ticket_ttl_minutes"`
}

type AppSubConfig struct {
	LogPageSize int `mapstructure:"log_page_size"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Security SecurityConfig `mapstructure:"security"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. ST_SERVER_PORT=9000
		v.SetEnvPrefix("ST")
		v.AutomaticEnv()

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}
		c.applyDefaults()

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 24
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "session_token"
	}
	if c.Security.BcryptCost <= 0 {
		c.Security.BcryptCost = 12
	}
	if c.Security.RootUsername == "" {
		c.Security.RootUsername = "admin"
	}
	if c.Security.TicketTTLMinutes <= 0 {
		c.Security.TicketTTLMinutes = 15
	}
	if c.App.LogPageSize <= 0 {
		c.App.LogPageSize = 50
	}
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
