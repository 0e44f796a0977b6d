package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/illarion/chatvault/internal/config"
	"github.com/illarion/chatvault/internal/core"
	"github.com/illarion/chatvault/internal/provider"
	"github.com/illarion/chatvault/internal/security"
	"github.com/illarion/chatvault/internal/vault"
)

var (
	cfg    = &config.Config{StorePath: config.DefaultStoreFile, Cipher: "auto"}
	logger = zerolog.Nop()
	stdin  = bufio.NewReader(os.Stdin)
)

// Setup sets the configuration and logger used by every command
func Setup(c *config.Config, log zerolog.Logger) {
	cfg = c
	logger = log
}

// OpenApp opens the configured store. With create set, a missing store is
// created; otherwise the command fails with a hint.
func OpenApp(create bool) *core.App {
	app, err := core.Open(cfg.StorePath, core.Options{
		Logger:     logger,
		Cipher:     vault.CipherMode(cfg.Cipher),
		DefaultURL: cfg.DefaultURL,
		Timeout:    cfg.Timeout,
		WorkDir:    ".",
		Create:     create,
	})
	if err != nil {
		HandleError(err)
	}
	return app
}

// ConfirmOrExit asks before a destructive change. Without a terminal the
// change needs --force.
func ConfirmOrExit(question string, force bool) {
	if force {
		return
	}
	if !core.IsTerminal() {
		fmt.Fprintln(os.Stderr, "Error: refusing to continue without confirmation (use --force)")
		os.Exit(1)
	}
	if !core.Confirm(stdin, question) {
		fmt.Println("Aborted")
		os.Exit(1)
	}
}

// HandleError handles common errors consistently
func HandleError(err error) {
	var statusErr *provider.StatusError

	switch {
	case errors.Is(err, core.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: no chatvault store at %s\n", cfg.StorePath)
		fmt.Fprintf(os.Stderr, "Run 'chatvault add' to register an API first\n")
	case errors.Is(err, core.ErrNoModelSelected):
		fmt.Fprintf(os.Stderr, "Error: no model selected\n")
		fmt.Fprintf(os.Stderr, "Run 'chatvault models' then 'chatvault use <api-id>:<model-id>'\n")
	case errors.Is(err, core.ErrAPINotFound), errors.Is(err, core.ErrAmbiguousID):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'chatvault ls' to see registered APIs\n")
	case errors.Is(err, security.ErrRateLimited):
		fmt.Fprintf(os.Stderr, "Error: too many requests, try again later\n")
	case errors.Is(err, security.ErrSessionLimit):
		fmt.Fprintf(os.Stderr, "Error: action limit for this session reached\n")
	case errors.Is(err, security.ErrSuspiciousInput):
		fmt.Fprintf(os.Stderr, "Error: input rejected: %s\n", err)
	case errors.Is(err, security.ErrInvalidAPIKey):
		fmt.Fprintf(os.Stderr, "Error: invalid API key format\n")
	case errors.Is(err, security.ErrPathEscapes), errors.Is(err, security.ErrAbsolutePath):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Import and export files must be inside the current directory\n")
	case errors.As(err, &statusErr):
		fmt.Fprintf(os.Stderr, "Error: provider answered %d: %s\n", statusErr.StatusCode, statusErr)
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

// shortID shortens a generated id for display; any unique prefix is accepted
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
