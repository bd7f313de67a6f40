package config

import (
	"fmt"
	"strconv"
	"time"
)

// The helpers below convert values decoded from JSON, YAML or the
// environment into typed settings.

func boolValue(key string, value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("invalid boolean for %s: %q", key, v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("invalid value type for %s: expected bool, got %T", key, value)
	}
}

func stringValue(key string, value interface{}) (string, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
}

// durationValue accepts "800ms" style strings or a number of nanoseconds.
func durationValue(key string, value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string for %s: %w", key, err)
		}
		return d, nil
	case float64:
		// JSON numbers come as float64
		return time.Duration(v), nil
	case int:
		return time.Duration(v), nil
	case int64:
		return time.Duration(v), nil
	case time.Duration:
		return v, nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected string or number, got %T", key, value)
	}
}
