package security

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPathValidator_Normalize(t *testing.T) {
	tmpDir := t.TempDir()

	validator, err := NewPathValidator(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	tests := []struct {
		name    string
		input   string
		want    string
		errType error
	}{
		{"simple file", "export.json", "export.json", nil},
		{"file in subdirectory", "backups/export.json", "backups/export.json", nil},
		{"dot slash", "./export.json", "export.json", nil},
		{"redundant slashes", "a//b///export.json", "a/b/export.json", nil},
		{"absolute inside root", filepath.Join(tmpDir, "in.json"), "in.json", nil},

		{"parent directory", "../export.json", "", ErrPathEscapes},
		{"nested parent", "a/../../export.json", "", ErrPathEscapes},
		{"absolute outside root", "/etc/passwd", "", ErrAbsolutePath},
		{"empty path", "", "", ErrEmptyPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.Normalize(tt.input)

			if tt.errType != nil {
				if !errors.Is(err, tt.errType) {
					t.Errorf("Expected %v for input %q, got %v", tt.errType, tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for input %q: %v", tt.input, err)
			}
			if result != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, result, tt.want)
			}
			if strings.Contains(result, "\\") {
				t.Errorf("Result should use forward slashes, got %q", result)
			}
		})
	}
}

func TestPathValidator_WriteAndRead(t *testing.T) {
	tmpDir := t.TempDir()

	validator, err := NewPathValidator(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	if err := validator.WriteFile("exports/today.json", []byte(`{"apis":[]}`)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(tmpDir, "exports", "today.json"))
	if err != nil {
		t.Fatalf("Export not created: %v", err)
	}
	if info.Mode().Perm() != ExportFilePerm {
		t.Errorf("Export permissions: got %v, want %v", info.Mode().Perm(), os.FileMode(ExportFilePerm))
	}

	data, err := validator.ReadFile("exports/today.json")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"apis":[]}` {
		t.Errorf("Content mismatch: got %q", data)
	}

	if _, err := validator.ReadFile("missing.json"); err == nil {
		t.Error("Expected error for missing file")
	}
}

// os.Root must refuse to write outside the directory
func TestPathValidator_ActualEscapePrevention(t *testing.T) {
	tmpDir := t.TempDir()

	outsideDir := filepath.Dir(tmpDir)
	targetFile := filepath.Join(outsideDir, "should_not_be_written.json")
	defer os.Remove(targetFile)

	validator, err := NewPathValidator(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	if err := validator.WriteFile("../should_not_be_written.json", []byte("pwned")); err == nil {
		t.Error("Expected error when trying to write outside root, got none")
	}

	if _, statErr := os.Stat(targetFile); statErr == nil {
		t.Error("File was created outside working directory")
	}

	if _, err := validator.ReadFile("../../etc/passwd"); err == nil {
		t.Error("Expected error when reading outside root")
	}
}
