package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables understood by the CLI.
const (
	EnvTabSize  = "ABLFMT_TAB_SIZE"
	EnvCasing   = "ABLFMT_CASING"
	EnvEOL      = "ABLFMT_EOL"
	EnvHistory  = "ABLFMT_HISTORY"
	EnvLogLevel = "ABLFMT_LOG_LEVEL"
)

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv copies ABLFMT_* variables into the file configuration.
func (f *File) ApplyEnv() error {
	if v := os.Getenv(EnvTabSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %s %q", EnvTabSize, v)
		}
		f.Settings[KeyTabSize] = n
	}
	if v := os.Getenv(EnvCasing); v != "" {
		f.Settings[KeyCasing] = v
	}
	if v := os.Getenv(EnvEOL); v != "" {
		f.EOL = v
	}
	if v := os.Getenv(EnvHistory); v != "" {
		f.History = v
	}
	return nil
}
