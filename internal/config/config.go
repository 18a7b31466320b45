package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the robot world server.
type Server struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Connection handling
	ReadTimeout    time.Duration `yaml:"read_timeout"`    // idle client disconnect
	WriteTimeout   time.Duration `yaml:"write_timeout"`   // per-response deadline
	MaxConnections int           `yaml:"max_connections"` // concurrent connection handlers
	MaxLineBytes   int           `yaml:"max_line_bytes"`  // longest accepted request line

	LogLevel string `yaml:"log_level"`

	World    WorldConfig    `yaml:"world"`
	Database DatabaseConfig `yaml:"database"`
	Monitor  MonitorConfig  `yaml:"monitor"`
}

// Addr returns the TCP listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.BindAddress, s.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
// Persistence is optional: with Enabled=false save/restore are unavailable.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// MonitorConfig configures the HTTP monitoring API.
type MonitorConfig struct {
	Enabled        bool          `yaml:"enabled"`
	BindAddress    string        `yaml:"bind_address"`
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	StreamInterval time.Duration `yaml:"stream_interval"` // websocket snapshot period
}

// Addr returns the HTTP listen address.
func (m MonitorConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.BindAddress, m.Port)
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		BindAddress:    "0.0.0.0",
		Port:           5000,
		ReadTimeout:    10 * time.Minute,
		WriteTimeout:   5 * time.Second,
		MaxConnections: 64,
		MaxLineBytes:   64 * 1024,
		LogLevel:       "info",
		World:          DefaultWorld(),
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "robotworld",
			Password: "robotworld",
			DBName:   "robotworld",
			SSLMode:  "disable",
		},
		Monitor: MonitorConfig{
			Enabled:        true,
			BindAddress:    "127.0.0.1",
			Port:           5080,
			AllowedOrigins: []string{"*"},
			StreamInterval: time.Second,
		},
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.World.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}
