package cmd

import (
	"fmt"
	"sort"
	"time"
)

// Events prints the recorded security events, oldest first. With clearLog set
// the log is emptied instead.
func Events(clearLog bool) {
	app := OpenApp(false)
	defer app.Close()

	if clearLog {
		if err := app.ClearEvents(); err != nil {
			HandleError(err)
		}
		fmt.Println("Security events cleared")
		return
	}

	events, err := app.Events()
	if err != nil {
		HandleError(err)
	}
	if len(events) == 0 {
		fmt.Println("No security events")
		return
	}

	for _, e := range events {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Printf("%s  %s", e.Timestamp.Local().Format(time.RFC3339), e.Type)
		for _, k := range keys {
			fmt.Printf(" %s=%v", k, e.Details[k])
		}
		fmt.Println()
	}
}
