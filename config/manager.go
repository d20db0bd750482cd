// Package config resolves formatter settings from defaults, config files,
// the environment and per-document overrides.
package config

import (
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/oxhq/ablfmt/formatter"
)

// SettingsPrefix is accepted in front of every setting name.
const SettingsPrefix = "AblFormatter."

const (
	KeyTabSize     = "tabSize"
	KeyCasing      = "casing"
	KeyLegacyUpper = "abl.completion.upperCase"
	DefaultTabSize = 4
)

// Manager answers setting lookups. Overrides win over settings; neither is
// mutated after construction.
type Manager struct {
	settings  map[string]any
	overrides map[string]any
}

// New returns a manager over the defaults with settings layered on top.
func New(settings map[string]any) *Manager {
	merged := DefaultSettings()
	for k, v := range settings {
		merged[strip(k)] = v
	}
	return &Manager{settings: merged}
}

func strip(name string) string {
	return strings.TrimPrefix(name, SettingsPrefix)
}

// Get returns the value of a setting, or nil.
func (m *Manager) Get(name string) any {
	name = strip(name)
	if v, ok := m.overrides[name]; ok {
		return v
	}
	return m.settings[name]
}

// TabSize returns the indentation width, DefaultTabSize when unset or invalid.
func (m *Manager) TabSize() int {
	switch v := m.Get(KeyTabSize).(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 && v == math.Trunc(v) {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultTabSize
}

// Casing returns the keyword casing. The legacy upper-case flag applies
// only when no casing is configured.
func (m *Manager) Casing() formatter.Casing {
	if s := formatter.String(m, KeyCasing); s != "" {
		if c, err := formatter.ParseCasing(s); err == nil {
			return c
		}
	}
	if formatter.Bool(m, KeyLegacyUpper) {
		return formatter.CasingUpper
	}
	return formatter.CasingPreserve
}

// WithOverrides returns a copy whose lookups consult overrides first.
// The receiver is unchanged.
func (m *Manager) WithOverrides(overrides map[string]any) formatter.Configuration {
	merged := maps.Clone(m.overrides)
	if merged == nil {
		merged = make(map[string]any, len(overrides))
	}
	for k, v := range overrides {
		merged[strip(k)] = v
	}
	return &Manager{settings: m.settings, overrides: merged}
}

// Settings returns the effective settings, overrides applied.
func (m *Manager) Settings() map[string]any {
	out := maps.Clone(m.settings)
	maps.Copy(out, m.overrides)
	return out
}
