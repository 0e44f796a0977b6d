package cmd

import (
	"fmt"
	"os"
)

// Remove removes registered APIs by id or unique id prefix
func Remove(ids []string, force bool) {
	if len(ids) == 0 {
		fmt.Fprintf(os.Stderr, "Error: rm requires at least one API id\n")
		fmt.Fprintf(os.Stderr, "Usage: chatvault rm [--force] <id> [id...]\n")
		os.Exit(1)
	}

	app := OpenApp(false)
	defer app.Close()

	ConfirmOrExit(fmt.Sprintf("Remove %d API(s)?", len(ids)), force)

	for _, id := range ids {
		api, err := app.RemoveAPI(id)
		if err != nil {
			HandleError(err)
		}
		fmt.Printf("Removed %s (%s)\n", api.Name, shortID(api.ID))
	}

	// Compact database to reclaim space
	if err := app.Compact(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: compaction failed: %s\n", err)
	}
}
