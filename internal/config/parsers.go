// Package config provides configuration loading and parsing for pressure.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Settings decoded by viper arrive as loosely typed values: YAML and TOML
// yield native numbers and bools, environment bindings always yield strings.
// The helpers below coerce them with cast and trim string input first.

// lookupSetting returns the first non-nil value stored under any of the
// candidate keys or their lowercase forms. Unset environment bindings show up
// as nil and are skipped.
func lookupSetting(settings map[string]interface{}, candidates ...string) (interface{}, bool) {
	for _, key := range candidates {
		for _, k := range []string{key, strings.ToLower(key)} {
			if val := settings[k]; val != nil {
				return val, true
			}
		}
	}
	return nil, false
}

func trimmed(value interface{}) interface{} {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return value
}

func asString(value interface{}) (string, error) {
	return cast.ToStringE(value)
}

// asInt truncates floats and treats an empty string as zero.
func asInt(value interface{}) (int, error) {
	value = trimmed(value)
	if value == nil || value == "" {
		return 0, nil
	}
	return cast.ToIntE(value)
}

func asFloat64(value interface{}) (float64, error) {
	value = trimmed(value)
	if value == nil || value == "" {
		return 0, nil
	}
	return cast.ToFloat64E(value)
}

func asBool(value interface{}) (bool, error) {
	value = trimmed(value)
	if value == nil || value == "" {
		return false, nil
	}
	return cast.ToBoolE(value)
}

// asDuration accepts a time.Duration, a Go duration string, or a bare number
// of seconds given either as a string or as a number.
func asDuration(value interface{}) (time.Duration, error) {
	switch v := trimmed(value).(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		if v == "" {
			return 0, nil
		}
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		return time.ParseDuration(v)
	default:
		secs, err := cast.ToIntE(v)
		if err != nil {
			return 0, fmt.Errorf("unsupported duration type %T", value)
		}
		return time.Duration(secs) * time.Second, nil
	}
}

func asStringMap(value interface{}) (map[string]string, error) {
	if value == nil {
		return nil, nil
	}
	m, err := cast.ToStringMapStringE(value)
	if err != nil {
		return nil, err
	}
	for k := range m {
		if strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("header key cannot be empty")
		}
	}
	return m, nil
}

// toStringKeyMap decodes a nested section and lowercases its keys so lookups
// match viper's own case folding.
func toStringKeyMap(value interface{}) (map[string]interface{}, error) {
	m, err := cast.ToStringMapE(value)
	if err != nil {
		return nil, fmt.Errorf("expected map, got %T", value)
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out, nil
}

// toList decodes a list section such as load_patterns.
func toList(value interface{}) ([]interface{}, error) {
	if value == nil {
		return nil, nil
	}
	items, err := cast.ToSliceE(value)
	if err != nil {
		return nil, fmt.Errorf("expected list, got %T", value)
	}
	return items, nil
}
