package utils

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Table is a loosely decoded TOML table.
type Table map[string]any

// LoadTOMLFile decodes a TOML file into the provided struct.
// Keys the struct does not know about are logged and ignored.
func LoadTOMLFile(configPath string, config any) error {
	meta, err := toml.DecodeFile(configPath, config)
	if err != nil {
		log.Warnf("TOML parsing error in config file %s: %v. Attempting partial recovery...", configPath, err)
		return err
	}
	for _, key := range meta.Undecoded() {
		log.Debugf("Ignoring unknown config key %q in %s", key.String(), configPath)
	}
	return nil
}

// ReadTable decodes a TOML file without a target struct, so that sections
// with valid types can be salvaged from a file the struct rejects.
func ReadTable(configPath string) (Table, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	table := Table{}
	if _, err := toml.Decode(string(data), (*map[string]any)(&table)); err != nil {
		return nil, err
	}
	return table, nil
}

// Section returns the named sub-table.
func (t Table) Section(name string) (Table, bool) {
	sub, ok := t[name].(map[string]any)
	return Table(sub), ok
}

// Lookup returns the value under key when it has type T.
// TOML integers decode as int64 and are accepted for T = int.
func Lookup[T any](t Table, key string) (T, bool) {
	var zero T
	raw, ok := t[key]
	if !ok {
		return zero, false
	}
	if v, ok := raw.(T); ok {
		return v, true
	}
	if n, ok := raw.(int64); ok {
		if v, ok := any(int(n)).(T); ok {
			return v, true
		}
	}
	return zero, false
}

// Assign stores the value under key into dst if it has the right type.
func Assign[T any](t Table, key string, dst *T) {
	if v, ok := Lookup[T](t, key); ok {
		*dst = v
	}
}
