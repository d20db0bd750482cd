package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"version", []string{"--version"}, 0},
		{"help", []string{"format", "--help"}, 0},
		{"unknown command", []string{"reformat"}, 1},
		{"missing file", []string{"parse", "does-not-exist.p"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, run(tt.args))
		})
	}
}
