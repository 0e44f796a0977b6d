package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Status reports how git treats the store file
type Status struct {
	IsRepo       bool
	StoreFile    string
	StoreTracked bool // committed or staged (bad: the key is inside)
	StoreIgnored bool // matched by a .gitignore (good)
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// CheckStore checks whether storeFile, relative to workDir, is safe from
// being committed
func CheckStore(workDir, storeFile string) *Status {
	status := &Status{StoreFile: storeFile}
	if !IsGitRepo(workDir) {
		return status
	}

	status.IsRepo = true
	status.StoreTracked = IsTracked(workDir, storeFile)
	status.StoreIgnored = IsIgnored(workDir, storeFile)
	return status
}

// Warnings lists the problems found in status, if any
func (s *Status) Warnings() []string {
	if !s.IsRepo {
		return nil
	}

	var warnings []string
	if s.StoreTracked {
		warnings = append(warnings, fmt.Sprintf("%s is tracked by git and holds its own key (run: git rm --cached %s)", s.StoreFile, s.StoreFile))
	}
	if !s.StoreIgnored {
		warnings = append(warnings, fmt.Sprintf("%s not in .gitignore (add it to .gitignore)", s.StoreFile))
	}
	return warnings
}

// FormatStatus formats git status for display
func FormatStatus(status *Status) string {
	if status == nil || !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit Integration:\n")

	if status.StoreTracked {
		result.WriteString(fmt.Sprintf("   error: %s is tracked by git (run: git rm --cached %s)\n", status.StoreFile, status.StoreFile))
	}
	if !status.StoreIgnored {
		result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore (add to .gitignore)\n", status.StoreFile))
	}
	if !status.StoreTracked && status.StoreIgnored {
		result.WriteString(fmt.Sprintf("   ok: %s is ignored and not tracked\n", status.StoreFile))
	}
	return result.String()
}
