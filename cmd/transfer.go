package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/illarion/chatvault/internal/core"
)

// Export writes the APIs (with masked keys), the conversation and the theme
// to path. An empty path uses the dated default name.
func Export(path string) {
	if path == "" {
		path = core.DefaultExportName(time.Now())
	}

	app := OpenApp(false)
	defer app.Close()

	written, err := app.WriteExport(path)
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("Exported to %s\n", written)
	fmt.Println("API keys are masked in exports and must be re-added after import")
}

// Import replaces the stored state with the sections present in path
func Import(path string, force bool) {
	if path == "" {
		fmt.Fprintf(os.Stderr, "Error: import requires a file argument\n")
		fmt.Fprintf(os.Stderr, "Usage: chatvault import [--force] <file>\n")
		os.Exit(1)
	}

	app := OpenApp(true)
	defer app.Close()

	data, err := app.ReadImportFile(path)
	if err != nil {
		HandleError(err)
	}

	ConfirmOrExit(fmt.Sprintf("Replace stored data with %s?", path), force)

	result, err := app.Import(data)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Imported %d API(s) and %d conversation turn(s)\n", result.APIs, result.Conversations)
	if result.Theme != "" {
		fmt.Printf("Theme set to %s\n", result.Theme)
	}
	if result.RestoredKeys > 0 {
		fmt.Printf("Kept %d stored key(s) for masked entries\n", result.RestoredKeys)
	}
	if result.Skipped > 0 {
		fmt.Printf("warning: skipped %d API(s) with an invalid key, URL or name\n", result.Skipped)
	}
	if result.MaskedKeys > 0 {
		fmt.Printf("warning: %d API(s) have masked keys; remove and re-add them to use them\n", result.MaskedKeys)
	}
}

// Diff compares an export file with the stored state
func Diff(path string) {
	if path == "" {
		fmt.Fprintf(os.Stderr, "Error: diff requires a file argument\n")
		fmt.Fprintf(os.Stderr, "Usage: chatvault diff <file>\n")
		os.Exit(1)
	}

	app := OpenApp(false)
	defer app.Close()

	data, err := app.ReadImportFile(path)
	if err != nil {
		HandleError(err)
	}

	diff, err := app.Diff(path, data)
	if err != nil {
		HandleError(err)
	}
	if diff == "" {
		fmt.Println("No differences")
		return
	}
	fmt.Print(diff)
}
