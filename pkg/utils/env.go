package utils

import (
	"os"
	"strconv"
	"strings"
)

func GetEnvTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetEnvTrimmedOrDefault(key, defaultValue string) string {
	if v := GetEnvTrimmed(key); v != "" {
		return v
	}

	return defaultValue
}

// GetEnvBool returns defaultValue when key is unset or not a valid bool.
func GetEnvBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, strconv.ParseBool)
}

// GetEnvFloat returns defaultValue when key is unset or not a valid float.
func GetEnvFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, defaultValue, func(v string) (float64, error) {
		return strconv.ParseFloat(v, 64)
	})
}

func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	v := GetEnvTrimmed(key)
	if v == "" {
		return defaultValue
	}

	parsed, err := parse(v)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// GetEnvPositiveInt64 returns defaultValue when key is unset, malformed or not positive.
func GetEnvPositiveInt64(key string, defaultValue int64) int64 {
	v := parseEnv(key, defaultValue, func(v string) (int64, error) {
		return strconv.ParseInt(v, 10, 64)
	})
	if v <= 0 {
		return defaultValue
	}
	return v
}

// GetEnvList splits a comma-separated value, dropping blank items.
func GetEnvList(key string) []string {
	var items []string
	for _, item := range strings.Split(GetEnvTrimmed(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
