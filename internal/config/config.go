// Package config handles configuration management using Viper.
package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration: the typed record the
// core is built from, and the ambient keys (logging, timeouts) the CLI
// layer resolves before constructing it.
type Config struct {
	Server     string `mapstructure:"server"`
	Port       int    `mapstructure:"port"`
	ClientName string `mapstructure:"client_name"`

	ScreenWidth  uint16 `mapstructure:"screen_width"`
	ScreenHeight uint16 `mapstructure:"screen_height"`

	AbsMouseMove       bool `mapstructure:"abs_mouse_move"`
	MouseMoveThreshold int  `mapstructure:"mouse_move_threshold"` // ms
	MousePosSyncFreq   int  `mapstructure:"mouse_pos_sync_freq"`

	TLS      bool   `mapstructure:"tls"`
	MTLS     bool   `mapstructure:"mtls"`
	TLSTrust bool   `mapstructure:"tls_trust"`
	PEMPath  string `mapstructure:"pem_path"`

	TLSMinVersion string `mapstructure:"tls_min_version"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	HeartbeatInterval          int `mapstructure:"heartbeat_interval"` // seconds
	HeartbeatTimeoutMultiplier int `mapstructure:"heartbeat_timeout_multiplier"`
	ConnectTimeout             int `mapstructure:"connect_timeout"` // seconds

	DeviceName string `mapstructure:"device_name"`
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	Server:     "",
	Port:       24800,
	ClientName: getHostname(),

	ScreenWidth:  0,
	ScreenHeight: 0,

	AbsMouseMove:       false,
	MouseMoveThreshold: 8,
	MousePosSyncFreq:   16,

	TLS:      false,
	MTLS:     false,
	TLSTrust: false,
	PEMPath:  "",

	TLSMinVersion: "1.2",

	LogLevel: "info",
	LogFile:  "",

	HeartbeatInterval:          3,
	HeartbeatTimeoutMultiplier: 3,
	ConnectTimeout:             10,

	DeviceName: "Synergo Virtual Input",
}

// Global config instance, set by Init.
var cfg *Config

// ConnectTimeoutDuration, HeartbeatIntervalDuration, and
// MouseMoveThresholdDuration convert the integer seconds/ms fields to
// time.Duration for the session/dispatch layers.
func (c Config) ConnectTimeoutDuration() time.Duration {
	return time.Duration(c.ConnectTimeout) * time.Second
}

func (c Config) HeartbeatIntervalDuration() time.Duration {
	return time.Duration(c.HeartbeatInterval) * time.Second
}

func (c Config) MouseMoveThresholdDuration() time.Duration {
	return time.Duration(c.MouseMoveThreshold) * time.Millisecond
}

// TLSMinVersionConstant converts TLSMinVersion to the tls.Config.MinVersion
// constant it names. The default case serves "1.2"; Validate rejects any
// other unrecognized string, so it is the only value that reaches it in
// practice.
func (c Config) TLSMinVersionConstant() uint16 {
	switch c.TLSMinVersion {
	case "1.0":
		return tls.VersionTLS10
	case "1.1":
		return tls.VersionTLS11
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}

// Init initializes the configuration system: TOML file + environment
// overrides + defaults, searched across /etc/synergo, the user's
// ~/.config/synergo, and the working directory, in that precedence order.
func Init() error {
	viper.SetConfigName("synergo")
	viper.SetConfigType("toml")

	viper.AddConfigPath("/etc/synergo")
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		viper.AddConfigPath(fmt.Sprintf("/home/%s/.config/synergo", sudoUser))
	} else if home := os.Getenv("HOME"); home != "" && home != "/root" {
		viper.AddConfigPath(filepath.Join(home, ".config", "synergo"))
	}
	viper.AddConfigPath(".")

	setDefaults()
	viper.SetEnvPrefix("synergo")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return Validate(cfg)
}

func setDefaults() {
	d := DefaultConfig
	viper.SetDefault("server", d.Server)
	viper.SetDefault("port", d.Port)
	viper.SetDefault("client_name", d.ClientName)
	viper.SetDefault("screen_width", d.ScreenWidth)
	viper.SetDefault("screen_height", d.ScreenHeight)
	viper.SetDefault("abs_mouse_move", d.AbsMouseMove)
	viper.SetDefault("mouse_move_threshold", d.MouseMoveThreshold)
	viper.SetDefault("mouse_pos_sync_freq", d.MousePosSyncFreq)
	viper.SetDefault("tls", d.TLS)
	viper.SetDefault("mtls", d.MTLS)
	viper.SetDefault("tls_trust", d.TLSTrust)
	viper.SetDefault("pem_path", d.PEMPath)
	viper.SetDefault("tls_min_version", d.TLSMinVersion)
	viper.SetDefault("log_level", d.LogLevel)
	viper.SetDefault("log_file", d.LogFile)
	viper.SetDefault("heartbeat_interval", d.HeartbeatInterval)
	viper.SetDefault("heartbeat_timeout_multiplier", d.HeartbeatTimeoutMultiplier)
	viper.SetDefault("connect_timeout", d.ConnectTimeout)
	viper.SetDefault("device_name", d.DeviceName)
}

// Get returns the current configuration.
func Get() *Config {
	if cfg == nil {
		return &DefaultConfig
	}
	return cfg
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() string {
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}
	if os.Getuid() == 0 || os.Getenv("SUDO_USER") != "" {
		return "/etc/synergo/synergo.toml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/synergo/synergo.toml"
	}
	return filepath.Join(home, ".config", "synergo", "synergo.toml")
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "synergo"
	}
	return hostname
}
