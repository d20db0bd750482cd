package core

import (
	"fmt"
	"strings"
)

// EOL is a line ending convention.
type EOL int

const (
	LF EOL = iota
	CRLF
	CR
)

// Delimiter returns the byte sequence of the line ending.
func (e EOL) Delimiter() string {
	switch e {
	case CRLF:
		return "\r\n"
	case CR:
		return "\r"
	default:
		return "\n"
	}
}

func (e EOL) String() string {
	switch e {
	case CRLF:
		return "crlf"
	case CR:
		return "cr"
	default:
		return "lf"
	}
}

// ParseEOL accepts "lf", "crlf", "cr" or the delimiter itself.
func ParseEOL(s string) (EOL, error) {
	switch strings.ToLower(s) {
	case "lf", "\n":
		return LF, nil
	case "crlf", "\r\n":
		return CRLF, nil
	case "cr", "\r":
		return CR, nil
	}
	return LF, fmt.Errorf("unknown line ending %q", s)
}

// DetectEOL returns the convention of the first line break in text, LF if none.
func DetectEOL(text string) EOL {
	i := strings.IndexAny(text, "\r\n")
	if i < 0 || text[i] == '\n' {
		return LF
	}
	if i+1 < len(text) && text[i+1] == '\n' {
		return CRLF
	}
	return CR
}
