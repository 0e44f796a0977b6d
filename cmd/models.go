package cmd

import (
	"fmt"
	"os"
	"strings"
)

// Models lists the models offered by every registered API
func Models() {
	app := OpenApp(false)
	defer app.Close()

	choices, err := app.AvailableModels()
	if err != nil {
		HandleError(err)
	}
	if len(choices) == 0 {
		fmt.Println("No models available")
		fmt.Println("Run 'chatvault add' to register an API")
		return
	}

	current := ""
	if selected, err := app.Selected(); err == nil {
		current = selected.Ref()
	}

	lastAPI := ""
	for _, choice := range choices {
		if choice.APIID != lastAPI {
			fmt.Printf("%s (%s) %s\n", choice.APIName, choice.ProviderName, shortID(choice.APIID))
			lastAPI = choice.APIID
		}
		marker := " "
		if choice.Ref() == current {
			marker = "*"
		}
		fmt.Printf("  %s %-28s %s\n", marker, choice.Model.ID, choice.Model.Description)
	}
}

// Use selects the model chat sends messages to. ref is "<api-id>:<model-id>".
func Use(ref string) {
	apiID, modelID, ok := strings.Cut(ref, ":")
	if !ok || apiID == "" || modelID == "" {
		fmt.Fprintf(os.Stderr, "Error: expected <api-id>:<model-id>, got %q\n", ref)
		os.Exit(1)
	}

	app := OpenApp(false)
	defer app.Close()

	choice, err := app.SelectModel(apiID, modelID)
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("Using %s via %s\n", choice.Model.Name, choice.APIName)
}
