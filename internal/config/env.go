package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnv overrides cfg from TODO_* environment variables. Unset or
// unparsable values leave the current setting alone.
func ApplyEnv(cfg *Config) {
	if val := getEnv("TODO_ADDR"); val != "" {
		cfg.Server.Addr = val
	}
	if val, ok := getEnvBool("TODO_DEV_STATIC"); ok {
		cfg.Server.DevStatic = val
	}
	if val := getEnv("TODO_STATIC_DIR"); val != "" {
		cfg.Server.StaticDir = val
	}
	if val := getEnvDuration("TODO_SESSION_TTL"); val != 0 {
		cfg.Session.TTL = val
	}
	if val := getEnvInt("TODO_MAX_SESSIONS"); val != 0 {
		cfg.Session.MaxSessions = val
	}
	if val := getEnv("TODO_DEFAULT_TEXT"); val != "" {
		cfg.UI.DefaultText = val
	}
	if val := getEnv("TODO_TITLE"); val != "" {
		cfg.UI.Title = val
	}
	if val := getEnv("TODO_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := getEnv("TODO_LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvInt(key string) int {
	val := getEnv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvDuration(key string) time.Duration {
	val := getEnv(key)
	if val == "" {
		return 0
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0
	}
	return d
}

func getEnvBool(key string) (bool, bool) {
	switch strings.ToLower(getEnv(key)) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	default:
		return false, false
	}
}
