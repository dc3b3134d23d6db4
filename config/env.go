package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvServerURL   = "RHYTHM_SERVER_URL"
	EnvMinBeats    = "RHYTHM_MIN_BEATS"
	EnvLogLevel    = "RHYTHM_LOG_LEVEL"
	EnvMetricsAddr = "RHYTHM_METRICS_ADDR"
	EnvAudio       = "RHYTHM_AUDIO"
	EnvSynthPort   = "RHYTHM_SYNTH_PORT"
)

// LoadEnv reads .env files into the environment. With no paths, ".env" is
// used. Variables already set win over the file. A missing file is an error
// the caller may ignore.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of key, or fallback if unset or empty
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of key, or fallback if unset, empty or
// not a number
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvBool accepts the strconv.ParseBool forms plus "on"/"off"
func GetEnvBool(key string, fallback bool) bool {
	s := strings.ToLower(os.Getenv(key))
	switch s {
	case "":
		return fallback
	case "on":
		return true
	case "off":
		return false
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ApplyEnv overlays RHYTHM_* variables on c
func (c *Config) ApplyEnv() {
	c.Server.BaseURL = GetEnv(EnvServerURL, c.Server.BaseURL)
	c.Rhythm.MinBeats = GetEnvInt(EnvMinBeats, c.Rhythm.MinBeats)
	c.Log.Level = GetEnv(EnvLogLevel, c.Log.Level)
	c.Metrics.Addr = GetEnv(EnvMetricsAddr, c.Metrics.Addr)
	c.Audio.Enabled = GetEnvBool(EnvAudio, c.Audio.Enabled)
	c.SynthOutput.PortName = GetEnv(EnvSynthPort, c.SynthOutput.PortName)
}
