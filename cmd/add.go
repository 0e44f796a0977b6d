package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/chatvault/internal/core"
)

// Add registers a new API. The key comes from CHATVAULT_API_KEY or a hidden
// prompt, never from the command line.
func Add(ctx context.Context, name, url, description string) {
	key := cfg.APIKey
	if key == "" {
		if !core.IsTerminal() {
			fmt.Fprintln(os.Stderr, "Error: no terminal to read the API key from (set CHATVAULT_API_KEY)")
			os.Exit(1)
		}
		var err error
		key, err = core.ReadSecret("API key: ")
		if err != nil {
			HandleError(err)
		}
	}

	app := OpenApp(true)
	defer app.Close()

	api, err := app.AddAPI(ctx, core.NewAPI{
		Name:        name,
		Key:         key,
		URL:         url,
		Description: description,
	})
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Added %s (%s) as %s\n", api.Name, api.ProviderName, shortID(api.ID))
	fmt.Printf("Run 'chatvault models' to pick a model\n")
}
