// SPDX-License-Identifier: MIT
package cmd

import (
	"testing"

	"flightframe/internal/config"
)

func TestIdentifyFlagDefaults(t *testing.T) {
	cmd := newIdentifyCmd()

	tests := []struct {
		flag string
		want string
	}{
		{"words", "8192"},
		{"all", "false"},
		{"interactive", "false"},
		{"monitor", "false"},
		{"udp-target", ""},
	}
	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.flag)
		if f == nil {
			t.Errorf("identify is missing flag --%s", tt.flag)
			continue
		}
		if f.DefValue != tt.want {
			t.Errorf("--%s default = %q, want %q", tt.flag, f.DefValue, tt.want)
		}
	}

	if f := cmd.Flags().ShorthandLookup("w"); f == nil || f.Name != "words" {
		t.Error("-w is not bound to --words")
	}
}

func TestSliceFlagDefaults(t *testing.T) {
	cmd := newSliceCmd()

	tests := []struct {
		flag string
		want string
	}{
		{"slice-start", "0"},
		{"slice-stop", "0"},
		{"words-to-read", "65536"},
		{"buffer-size", "1048576"},
	}
	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.flag)
		if f == nil {
			t.Errorf("slice is missing flag --%s", tt.flag)
			continue
		}
		if f.DefValue != tt.want {
			t.Errorf("--%s default = %q, want %q", tt.flag, f.DefValue, tt.want)
		}
	}
	if f := cmd.Flags().ShorthandLookup("b"); f == nil || f.Name != "buffer-size" {
		t.Error("-b is not bound to --buffer-size")
	}
}

func TestAlignerOptionsFromConfig(t *testing.T) {
	le := false
	cfg := &config.Config{
		Align: config.AlignConfig{
			WPS:          []int{128, 512},
			LittleEndian: &le,
		},
	}
	opts := alignerOptions(cfg)
	if len(opts.WPS) != 2 || opts.WPS[0] != 128 || opts.WPS[1] != 512 {
		t.Errorf("WPS = %v", opts.WPS)
	}
	if opts.LittleEndian {
		t.Error("LittleEndian override not applied")
	}

	defaults := alignerOptions(&config.Config{})
	if !defaults.LittleEndian || len(defaults.WPS) != 5 {
		t.Errorf("defaults = %+v", defaults)
	}
}
