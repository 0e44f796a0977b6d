package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func gitInit(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	cmd := exec.Command("git", "init", "-q")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git init failed: %v: %s", err, out)
	}
	return dir
}

func TestCheckStoreOutsideRepo(t *testing.T) {
	dir := t.TempDir()

	status := CheckStore(dir, ".chatvault")
	if status.IsRepo {
		// Temp dirs can live inside a repository on some machines
		t.Skip("temp dir is inside a git repository")
	}
	if len(status.Warnings()) != 0 {
		t.Errorf("Expected no warnings outside a repository, got %v", status.Warnings())
	}
	if FormatStatus(status) != "" {
		t.Error("Expected empty output outside a repository")
	}
}

func TestCheckStoreNotIgnored(t *testing.T) {
	dir := gitInit(t)
	if err := os.WriteFile(filepath.Join(dir, ".chatvault"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	status := CheckStore(dir, ".chatvault")
	if !status.IsRepo {
		t.Fatal("Expected a repository")
	}
	if status.StoreTracked {
		t.Error("Store should not be tracked")
	}
	if status.StoreIgnored {
		t.Error("Store should not be ignored")
	}

	warnings := status.Warnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], ".gitignore") {
		t.Errorf("Unexpected warnings: %v", warnings)
	}
	if !strings.Contains(FormatStatus(status), "warning:") {
		t.Errorf("Expected a warning line, got %q", FormatStatus(status))
	}
}

func TestCheckStoreIgnored(t *testing.T) {
	dir := gitInit(t)
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".chatvault\n"), 0644); err != nil {
		t.Fatal(err)
	}

	status := CheckStore(dir, ".chatvault")
	if !status.StoreIgnored {
		t.Error("Store should be ignored")
	}
	if len(status.Warnings()) != 0 {
		t.Errorf("Expected no warnings, got %v", status.Warnings())
	}
	if !strings.Contains(FormatStatus(status), "ok:") {
		t.Errorf("Expected ok line, got %q", FormatStatus(status))
	}
}

func TestCheckStoreTracked(t *testing.T) {
	dir := gitInit(t)
	if err := os.WriteFile(filepath.Join(dir, ".chatvault"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command("git", "add", ".chatvault")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git add failed: %v: %s", err, out)
	}

	status := CheckStore(dir, ".chatvault")
	if !status.StoreTracked {
		t.Error("Store should be tracked")
	}
	if !strings.Contains(FormatStatus(status), "error:") {
		t.Errorf("Expected error line, got %q", FormatStatus(status))
	}
}
