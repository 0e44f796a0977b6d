package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/illarion/chatvault/internal/core"
	"github.com/illarion/chatvault/internal/git"
)

// Reset deletes all stored APIs, the conversation and the key
func Reset(force bool) {
	app := OpenApp(false)
	defer app.Close()

	ConfirmOrExit("Delete all APIs, the conversation and the encryption key?", force)

	if err := app.Reset(); err != nil {
		HandleError(err)
	}
	if err := app.Compact(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: compaction failed: %s\n", err)
	}
	fmt.Println("All data cleared")
}

// Theme prints the current theme, or stores a new one
func Theme(name string) {
	app := OpenApp(name != "")
	defer app.Close()

	if name == "" {
		theme, err := app.Theme()
		if err != nil {
			HandleError(err)
		}
		fmt.Println(theme)
		return
	}

	if err := app.SetTheme(strings.ToLower(name)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Available themes: %s\n", strings.Join(core.Themes, ", "))
		os.Exit(1)
	}
	fmt.Printf("Theme set to %s\n", strings.ToLower(name))
}

// Report prints a summary of the stored state
func Report(asJSON bool) {
	app := OpenApp(false)
	defer app.Close()

	report, err := app.Report()
	if err != nil {
		HandleError(err)
	}

	if asJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			HandleError(err)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("APIs:          %d (%d active)\n", report.TotalAPIs, report.ActiveAPIs)
	if len(report.Providers) > 0 {
		fmt.Printf("Providers:     %s\n", strings.Join(report.Providers, ", "))
	}
	fmt.Printf("Conversation:  %d turn(s)\n", report.TotalConversations)
	if report.LastActivity != nil {
		fmt.Printf("Last activity: %s\n", report.LastActivity.Local().Format(time.RFC3339))
	}
	fmt.Printf("Theme:         %s\n", report.CurrentTheme)
}

// Status shows how the store is protected and what it holds
func Status() {
	if _, err := os.Stat(cfg.StorePath); os.IsNotExist(err) {
		fmt.Printf("No chatvault store at %s\n", cfg.StorePath)
		fmt.Println("Run 'chatvault add' to create one")
		return
	}

	app := OpenApp(false)
	defer app.Close()

	status, err := app.Status()
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Store:    %s\n", status.Path)
	if !status.Created.IsZero() {
		fmt.Printf("Created:  %s\n", status.Created.Local().Format(time.RFC3339))
	}
	if !status.Modified.IsZero() {
		fmt.Printf("Modified: %s\n", status.Modified.Local().Format(time.RFC3339))
	}
	fmt.Printf("Key:      %s\n", status.KeyState)
	fmt.Printf("Cipher:   %s\n", status.Method)
	if status.WeakKey {
		fmt.Println("   warning: key came from a non-cryptographic source, run 'chatvault reset'")
	}

	fmt.Println("\nDatasets:")
	for _, ds := range status.Datasets {
		if ds.State == core.DatasetAbsent {
			continue
		}
		fmt.Printf("   %-36s %s\n", ds.Name, ds.State)
	}

	fmt.Printf("\nEntries: %d\n", status.Entries)
	fmt.Printf("APIs: %d, conversation: %d turn(s)\n", status.APICount, status.TurnCount)
	if status.Selected != "" {
		fmt.Printf("Selected model: %s\n", status.Selected)
	}
	fmt.Printf("Theme: %s\n", status.Theme)
	if status.SecurityEvents > 0 {
		fmt.Printf("Security events: %d\n", status.SecurityEvents)
	}

	fmt.Print(git.FormatStatus(status.GitStatus))
}
