package cmd

import (
	"fmt"
	"time"

	"github.com/illarion/chatvault/internal/core"
	"github.com/illarion/chatvault/internal/security"
)

// List shows registered APIs with masked keys
func List() {
	app := OpenApp(false)
	defer app.Close()

	apis, err := app.APIs()
	if err != nil {
		HandleError(err)
	}

	if len(apis) == 0 {
		fmt.Println("No APIs registered")
		fmt.Println("Run 'chatvault add' to register one")
		return
	}

	for _, api := range apis {
		icon := "○"
		if api.ConnectionStatus == core.StatusActive {
			icon = "●"
		}
		fmt.Printf("  %s %s  %s (%s)\n", icon, shortID(api.ID), api.Name, api.ProviderName)
		fmt.Printf("      key: %s\n", security.MaskDisplay(api.Key))
		fmt.Printf("      url: %s\n", api.URL)
		if api.Description != "" {
			fmt.Printf("      %s\n", api.Description)
		}
		if api.LastUsed != nil {
			fmt.Printf("      last used: %s\n", api.LastUsed.Local().Format(time.RFC3339))
		}
	}
}
