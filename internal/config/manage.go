package config

import (
	"fmt"
	"sort"
	"strconv"
)

// Keys returns all known config keys, sorted.
func Keys() []string {
	keys := make([]string, len(specs))
	for i, s := range specs {
		keys[i] = s.key
	}
	sort.Strings(keys)
	return keys
}

// Get returns the effective value of a key (defaults + file backend + env)
// rendered as a string.
func Get(key string) (string, error) {
	spec, ok := findSpec(key)
	if !ok {
		return "", fmt.Errorf("unknown config key: %s", key)
	}

	cfg := defaults()
	if err := applyBackend(&cfg, newFileBackend(configFilePath())); err != nil {
		return "", err
	}
	applyEnvOverrides(&cfg)

	return fmt.Sprintf("%v", spec.extract(cfg)), nil
}

// Set writes a value to the file backend, parsing it according to the key's
// declared type.
func Set(key, value string) error {
	spec, ok := findSpec(key)
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}

	b := newFileBackend(configFilePath())
	switch spec.typ {
	case kString:
		return b.SetString(key, value)
	case kInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s expects an integer: %w", key, err)
		}
		return b.SetInt(key, i)
	case kBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects a boolean: %w", key, err)
		}
		return b.SetBool(key, v)
	}
	return fmt.Errorf("unknown config key: %s", key)
}

// Unset removes a key from the file backend, restoring its default.
func Unset(key string) error {
	if _, ok := findSpec(key); !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	return newFileBackend(configFilePath()).Delete(key)
}

func findSpec(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key {
			return s, true
		}
	}
	return keySpec{}, false
}
