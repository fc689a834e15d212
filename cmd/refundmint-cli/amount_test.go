package main

import (
	"strings"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"1", 100_000_000, false},
		{"0.5", 50_000_000, false},
		{"2.00000001", 200_000_001, false},
		{"0", 0, false},
		{"", 0, true},
		{"-1", 0, true},
		{"1.", 0, true},
		{"1.123456789", 0, true},
		{"abc", 0, true},
		{"1.2x", 0, true},
		{"184467440738", 0, true},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseAmount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		units uint64
		want  string
	}{
		{0, "0.00000000"},
		{100_000_000, "1.00000000"},
		{150_000_001, "1.50000001"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.units); got != tt.want {
			t.Errorf("formatAmount(%d) = %q, want %q", tt.units, got, tt.want)
		}
		back, err := parseAmount(tt.want)
		if err != nil || back != tt.units {
			t.Errorf("parseAmount(%q) = %d, %v", tt.want, back, err)
		}
	}
}

func TestFormatDeadline(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	if got := formatDeadline(0, now); got != "none" {
		t.Errorf("zero deadline = %q", got)
	}
	if got := formatDeadline(1_700_000_180, now); !strings.Contains(got, "in 3m0s") {
		t.Errorf("future deadline = %q", got)
	}
	if got := formatDeadline(1_699_999_000, now); !strings.HasSuffix(got, "(passed)") {
		t.Errorf("past deadline = %q", got)
	}
}
