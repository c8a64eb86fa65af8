package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool accepts "true", "1", "yes" and "false", "0", "no" in any case.
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// ApplyEnv overrides cfg with any WINMEM_ variables that are set. Unparsable
// values are ignored.
func ApplyEnv(cfg *Config) {
	cfg.Format = getEnvString("FORMAT", cfg.Format)
	cfg.Workers = getEnvInt("WORKERS", cfg.Workers)
	cfg.Timeout.Duration = getEnvDuration("TIMEOUT", cfg.Timeout.Duration)
	cfg.TopN = getEnvInt("TOP", cfg.TopN)
	cfg.SortBy = getEnvString("SORT", cfg.SortBy)
	cfg.ShowScore = getEnvBool("SCORE", cfg.ShowScore)

	cfg.Thresholds.WarnUtil = getEnvFloat("WARN_UTIL", cfg.Thresholds.WarnUtil)
	cfg.Thresholds.CritUtil = getEnvFloat("CRIT_UTIL", cfg.Thresholds.CritUtil)
	cfg.Thresholds.WarnSaturation = getEnvFloat("WARN_SATURATION", cfg.Thresholds.WarnSaturation)
	cfg.Thresholds.WarnProcessShare = getEnvFloat("WARN_PROCESS_SHARE", cfg.Thresholds.WarnProcessShare)

	cfg.BaselineDir = getEnvString("BASELINE_DIR", cfg.BaselineDir)
	cfg.PprofAddr = getEnvString("PPROF_ADDR", cfg.PprofAddr)

	cfg.Log.Level = getEnvString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnvString("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.File = getEnvString("LOG_FILE", cfg.Log.File)

	cfg.Serve.Addr = getEnvString("SERVE_ADDR", cfg.Serve.Addr)
	cfg.Serve.Path = getEnvString("SERVE_PATH", cfg.Serve.Path)

	cfg.NATS.URL = getEnvString("NATS_URL", cfg.NATS.URL)
	cfg.NATS.Subject = getEnvString("NATS_SUBJECT", cfg.NATS.Subject)
	cfg.NATS.Timeout.Duration = getEnvDuration("NATS_TIMEOUT", cfg.NATS.Timeout.Duration)
}
