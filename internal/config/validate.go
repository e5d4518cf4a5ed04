package config

import "fmt"

// ErrConfig wraps every validation failure so callers can errors.As into
// it uniformly and read the offending Field.
type ErrConfig struct {
	Field  string
	Reason string
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate rejects configurations the core could not run with, so malformed
// input is caught at the CLI boundary rather than surfacing as a confusing
// transport or dispatch failure later.
func Validate(c *Config) error {
	if c.Server == "" {
		return &ErrConfig{Field: "server", Reason: "must not be empty"}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return &ErrConfig{Field: "port", Reason: "must be between 1 and 65535"}
	}
	if c.MTLS && c.PEMPath == "" {
		return &ErrConfig{Field: "pem_path", Reason: "required when mtls is set"}
	}
	if c.MouseMoveThreshold < 0 {
		return &ErrConfig{Field: "mouse_move_threshold", Reason: "must not be negative"}
	}
	if c.MousePosSyncFreq < 0 {
		return &ErrConfig{Field: "mouse_pos_sync_freq", Reason: "must not be negative"}
	}
	if c.ConnectTimeout <= 0 {
		return &ErrConfig{Field: "connect_timeout", Reason: "must be positive"}
	}
	if c.HeartbeatInterval <= 0 {
		return &ErrConfig{Field: "heartbeat_interval", Reason: "must be positive"}
	}
	if c.HeartbeatTimeoutMultiplier <= 0 {
		return &ErrConfig{Field: "heartbeat_timeout_multiplier", Reason: "must be positive"}
	}
	switch c.TLSMinVersion {
	case "1.0", "1.1", "1.2", "1.3":
	default:
		return &ErrConfig{Field: "tls_min_version", Reason: "must be one of 1.0, 1.1, 1.2, 1.3"}
	}
	return nil
}
