package formatter

import (
	"fmt"
	"strconv"
	"strings"
)

// Casing controls how keywords are written.
type Casing int

const (
	CasingPreserve Casing = iota
	CasingUpper
	CasingLower
)

// ParseCasing accepts "preserve", "upper" and "lower".
func ParseCasing(s string) (Casing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "preserve":
		return CasingPreserve, nil
	case "upper":
		return CasingUpper, nil
	case "lower":
		return CasingLower, nil
	}
	return CasingPreserve, fmt.Errorf("unknown casing %q", s)
}

func (c Casing) String() string {
	switch c {
	case CasingUpper:
		return "upper"
	case CasingLower:
		return "lower"
	default:
		return "preserve"
	}
}

// Apply rewrites a keyword according to the casing.
func (c Casing) Apply(keyword string) string {
	switch c {
	case CasingUpper:
		return strings.ToUpper(keyword)
	case CasingLower:
		return strings.ToLower(keyword)
	default:
		return keyword
	}
}

// String reads a setting as text. Missing settings yield "".
func String(cfg Configuration, name string) string {
	switch v := cfg.Get(name).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Bool reads a setting as a boolean. Strings such as "true" and "yes" count.
func Bool(cfg Configuration, name string) bool {
	switch v := cfg.Get(name).(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "yes", "y", "on":
			return true
		}
		b, _ := strconv.ParseBool(v)
		return b
	case int:
		return v != 0
	case float64:
		return v != 0
	}
	return false
}

// Is reports whether a string setting equals want, ignoring case.
func Is(cfg Configuration, name, want string) bool {
	return strings.EqualFold(String(cfg, name), want)
}
