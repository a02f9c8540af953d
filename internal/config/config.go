// Package config loads runtime settings from the environment, with an
// optional YAML file overlay for the CLI and server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the CLI and control server need to wire the
// protocol clients.
type Config struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// SSDPWindowMs is the discovery listen window in milliseconds.
	SSDPWindowMs int `yaml:"ssdp_window_ms"`
	// SonosTimeoutMs bounds every HTTP call to a device.
	SonosTimeoutMs int `yaml:"sonos_timeout_ms"`
	// StaticDeviceIPs are probed directly in addition to SSDP results.
	StaticDeviceIPs []string `yaml:"static_device_ips"`

	LogLevel string `yaml:"log_level"`
}

// Load reads configuration from environment variables with defaults.
func Load() (Config, error) {
	cfg := Config{
		Host:            envString("HOST", "0.0.0.0"),
		Port:            envString("PORT", "9000"),
		SSDPWindowMs:    envInt("SSDP_WINDOW_MS", 2000),
		SonosTimeoutMs:  envInt("SONOS_TIMEOUT_MS", 5000),
		StaticDeviceIPs: envCSV("STATIC_DEVICE_IPS"),
		LogLevel:        envString("LOG_LEVEL", "info"),
	}
	return cfg, cfg.validate()
}

// LoadFile reads configuration from a YAML file, then lets environment
// variables override it via Load's defaults being applied only for keys the
// file leaves unset.
func LoadFile(path string) (Config, error) {
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.SSDPWindowMs <= 0 {
		return fmt.Errorf("ssdp window must be positive, got %dms", c.SSDPWindowMs)
	}
	if c.SonosTimeoutMs <= 0 {
		return fmt.Errorf("sonos timeout must be positive, got %dms", c.SonosTimeoutMs)
	}
	return nil
}

// SSDPWindow returns the discovery window as a Duration.
func (c Config) SSDPWindow() time.Duration {
	return time.Duration(c.SSDPWindowMs) * time.Millisecond
}

// SonosTimeout returns the per-call timeout as a Duration.
func (c Config) SonosTimeout() time.Duration {
	return time.Duration(c.SonosTimeoutMs) * time.Millisecond
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envCSV(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return []string{}
	}
	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}
