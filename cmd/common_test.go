package cmd

import "testing"

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 bytes"},
		{1023, "1023 bytes"},
		{1024, "1.0 KB"},
		{32 * 1024, "32.0 KB"},
		{3 * 1024 * 1024 / 2, "1.5 MB"},
		{2 * 1024 * 1024 * 1024, "2.0 GB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.size); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0"); got != "0f1e2d3c" {
		t.Errorf("Unexpected short id: %s", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("Short ids must be kept: %s", got)
	}
}
