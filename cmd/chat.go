package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/illarion/chatvault/internal/core"
	"github.com/illarion/chatvault/internal/security"
)

// Chat sends one message, or runs an interactive session when message is empty
func Chat(ctx context.Context, message string) {
	app := OpenApp(false)
	defer app.Close()

	selected, err := app.Selected()
	if err != nil {
		HandleError(err)
	}

	if message != "" {
		turn, err := app.Chat(ctx, message)
		if err != nil {
			HandleError(err)
		}
		fmt.Println(turn.AI)
		return
	}

	fmt.Printf("Chatting with %s via %s. Empty line or Ctrl-D to quit.\n", selected.Model.Name, selected.APIName)
	for {
		line, err := core.ReadLine(stdin, "> ")
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return
		}
		if err != nil {
			HandleError(err)
		}
		if strings.TrimSpace(line) == "" {
			return
		}

		turn, err := app.Chat(ctx, line)
		switch {
		case err == nil:
			fmt.Printf("%s\n\n", turn.AI)
		case errors.Is(err, security.ErrSessionLimit), ctx.Err() != nil:
			HandleError(err)
		default:
			// Stay in the loop; the API is already marked inactive
			fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		}
	}
}

// History prints the stored conversation. limit > 0 shows only the last turns.
func History(limit int) {
	app := OpenApp(false)
	defer app.Close()

	turns, err := app.Conversation()
	if err != nil {
		HandleError(err)
	}
	if len(turns) == 0 {
		fmt.Println("No conversation yet")
		return
	}
	if limit > 0 && limit < len(turns) {
		turns = turns[len(turns)-limit:]
	}

	for _, turn := range turns {
		fmt.Printf("[%s] %s\n", turn.Timestamp.Local().Format("2006-01-02 15:04"), turn.ModelID)
		fmt.Printf("you: %s\n", turn.User)
		fmt.Printf("ai:  %s\n\n", turn.AI)
	}
}

// Clear deletes the stored conversation
func Clear(force bool) {
	app := OpenApp(false)
	defer app.Close()

	ConfirmOrExit("Delete the whole conversation?", force)

	if err := app.ClearConversation(); err != nil {
		HandleError(err)
	}
	fmt.Println("Conversation cleared")
}
