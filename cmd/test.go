package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/chatvault/internal/core"
)

// Test checks that APIs answer. Without ids every API is tested.
func Test(ctx context.Context, ids []string) {
	app := OpenApp(false)
	defer app.Close()

	var results []core.TestResult
	if len(ids) == 0 {
		var err error
		results, err = app.TestAll(ctx)
		if err != nil {
			HandleError(err)
		}
	} else {
		for _, id := range ids {
			api, err := app.TestConnection(ctx, id)
			if api.ID == "" {
				HandleError(err)
			}
			results = append(results, core.TestResult{API: api, Err: err})
		}
	}

	if len(results) == 0 {
		fmt.Println("No APIs registered")
		return
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("  ✗ %s  %s: %s\n", shortID(r.API.ID), r.API.Name, r.Err)
			continue
		}
		fmt.Printf("  ✓ %s  %s\n", shortID(r.API.ID), r.API.Name)
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d API(s) failed\n", failed, len(results))
		os.Exit(1)
	}
}
