package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/illarion/chatvault/cmd"
	"github.com/illarion/chatvault/internal/config"
	"github.com/illarion/chatvault/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	cmd.Setup(cfg, logger.New(cfg.DevMode, cfg.LogLevel))

	switch os.Args[1] {
	case "add":
		runAdd(ctx, os.Args[2:])
	case "ls":
		runLs(ctx, os.Args[2:])
	case "rm":
		runRm(ctx, os.Args[2:])
	case "models":
		runModels(ctx, os.Args[2:])
	case "use":
		runUse(ctx, os.Args[2:])
	case "chat":
		runChat(ctx, os.Args[2:])
	case "test":
		runTest(ctx, os.Args[2:])
	case "history":
		runHistory(ctx, os.Args[2:])
	case "clear":
		runClear(ctx, os.Args[2:])
	case "export":
		runExport(ctx, os.Args[2:])
	case "import":
		runImport(ctx, os.Args[2:])
	case "diff":
		runDiff(ctx, os.Args[2:])
	case "reset":
		runReset(ctx, os.Args[2:])
	case "theme":
		runTheme(ctx, os.Args[2:])
	case "report":
		runReport(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "events":
		runEvents(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// parse parses args into fs, exiting on error
func parse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runAdd(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "Display name (default \"API <n>\")")
	url := fs.String("url", "", "API base URL (default from CHATVAULT_DEFAULT_URL)")
	description := fs.String("description", "", "Free-form description")
	parse(fs, args)

	cmd.Add(ctx, *name, *url, *description)
}

func runLs(_ context.Context, args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	parse(fs, args)

	cmd.List()
}

func runRm(_ context.Context, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	force := fs.Bool("force", false, "Remove without confirmation")
	parse(fs, args)

	cmd.Remove(fs.Args(), *force)
}

func runModels(_ context.Context, args []string) {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	parse(fs, args)

	cmd.Models()
}

func runUse(_ context.Context, args []string) {
	fs := flag.NewFlagSet("use", flag.ExitOnError)
	parse(fs, args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: chatvault use <api-id>:<model-id>")
		os.Exit(1)
	}
	cmd.Use(fs.Arg(0))
}

func runChat(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	parse(fs, args)

	cmd.Chat(ctx, strings.Join(fs.Args(), " "))
}

func runTest(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	parse(fs, args)

	cmd.Test(ctx, fs.Args())
}

func runHistory(_ context.Context, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("n", 0, "Show only the last n turns")
	parse(fs, args)

	cmd.History(*limit)
}

func runClear(_ context.Context, args []string) {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	force := fs.Bool("force", false, "Clear without confirmation")
	parse(fs, args)

	cmd.Clear(*force)
}

func runExport(_ context.Context, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	parse(fs, args)

	cmd.Export(fs.Arg(0))
}

func runImport(_ context.Context, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	force := fs.Bool("force", false, "Import without confirmation")
	parse(fs, args)

	cmd.Import(fs.Arg(0), *force)
}

func runDiff(_ context.Context, args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	parse(fs, args)

	cmd.Diff(fs.Arg(0))
}

func runReset(_ context.Context, args []string) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	force := fs.Bool("force", false, "Reset without confirmation")
	parse(fs, args)

	cmd.Reset(*force)
}

func runTheme(_ context.Context, args []string) {
	fs := flag.NewFlagSet("theme", flag.ExitOnError)
	parse(fs, args)

	cmd.Theme(fs.Arg(0))
}

func runReport(_ context.Context, args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	parse(fs, args)

	cmd.Report(*asJSON)
}

func runStatus(_ context.Context, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	parse(fs, args)

	cmd.Status()
}

func runEvents(_ context.Context, args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	clearLog := fs.Bool("clear", false, "Empty the event log")
	parse(fs, args)

	cmd.Events(*clearLog)
}

func runCompact(_ context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	parse(fs, args)

	cmd.Compact()
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: chatvault completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("chatvault - Keep AI API keys encrypted and chat from the terminal")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  chatvault <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  add         Register an API key")
	fmt.Println("  ls          List registered APIs (keys masked)")
	fmt.Println("  rm          Remove registered APIs")
	fmt.Println("  models      List models of registered APIs")
	fmt.Println("  use         Select the model to chat with")
	fmt.Println("  chat        Send a message, or start an interactive chat")
	fmt.Println("  test        Test API connections")
	fmt.Println("  history     Show the conversation")
	fmt.Println("  clear       Delete the conversation")
	fmt.Println("  export      Export data with masked keys")
	fmt.Println("  import      Import data from an export file")
	fmt.Println("  diff        Compare an export file with stored data")
	fmt.Println("  reset       Delete all data and the encryption key")
	fmt.Println("  theme       Show or set the theme")
	fmt.Println("  report      Summarize stored data")
	fmt.Println("  status      Show store and encryption status")
	fmt.Println("  events      Show recorded security events")
	fmt.Println("  compact     Compact the store to reclaim disk space")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  chatvault add --name work       # Register a key (prompted)")
	fmt.Println("  chatvault models                # Pick a model")
	fmt.Println("  chatvault use 1a2b3c4d:gpt-4    # Select it")
	fmt.Println("  chatvault chat                  # Start chatting")
	fmt.Println()
	fmt.Println("Use 'chatvault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "add":
		fmt.Println("chatvault add [--name <name>] [--url <url>] [--description <text>]")
		fmt.Println()
		fmt.Println("Registers an API key. The key is read from a hidden prompt, or from")
		fmt.Println("CHATVAULT_API_KEY when set. The provider is detected from the key shape.")
		fmt.Println("Creates the store on first use.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --name          Display name (default \"API <n>\")")
		fmt.Println("  --url           API base URL (default https://agentrouter.org)")
		fmt.Println("  --description   Free-form description")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  chatvault add")
		fmt.Println("  chatvault add --name work --url https://api.openai.com")
	case "ls":
		fmt.Println("chatvault ls")
		fmt.Println()
		fmt.Println("Lists registered APIs with masked keys, provider and connection status.")
	case "rm":
		fmt.Println("chatvault rm [--force] <id> [id...]")
		fmt.Println()
		fmt.Println("Removes APIs. Any unique id prefix shown by 'ls' is accepted.")
		fmt.Println("Clears the selected model if it belonged to a removed API.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  chatvault rm 1a2b3c4d")
	case "models":
		fmt.Println("chatvault models")
		fmt.Println()
		fmt.Println("Lists the models each registered API offers. The selected one is marked with *.")
	case "use":
		fmt.Println("chatvault use <api-id>:<model-id>")
		fmt.Println()
		fmt.Println("Selects the model 'chat' sends messages to.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  chatvault use 1a2b3c4d:claude-3-opus-20240229")
	case "chat":
		fmt.Println("chatvault chat [message]")
		fmt.Println()
		fmt.Println("Sends a message to the selected model and prints the reply.")
		fmt.Println("Without a message, starts an interactive session.")
		fmt.Println("Every turn is stored encrypted.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  chatvault chat \"Summarize RFC 2616 in one line\"")
		fmt.Println("  chatvault chat")
	case "test":
		fmt.Println("chatvault test [id...]")
		fmt.Println()
		fmt.Println("Checks that APIs answer and updates their connection status.")
		fmt.Println("Without ids, tests every API.")
	case "history":
		fmt.Println("chatvault history [-n <count>]")
		fmt.Println()
		fmt.Println("Prints the stored conversation.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -n    Show only the last n turns")
	case "clear":
		fmt.Println("chatvault clear [--force]")
		fmt.Println()
		fmt.Println("Deletes the stored conversation.")
	case "export":
		fmt.Println("chatvault export [file]")
		fmt.Println()
		fmt.Println("Writes APIs, the conversation and the theme to a JSON file.")
		fmt.Println("API keys are masked. The file must be inside the current directory.")
		fmt.Println("Defaults to chatvault-export-YYYY-MM-DD.json.")
	case "import":
		fmt.Println("chatvault import [--force] <file>")
		fmt.Println()
		fmt.Println("Replaces stored APIs, conversation and theme with those present in file.")
		fmt.Println("Masked keys are restored from APIs already stored with the same id.")
	case "diff":
		fmt.Println("chatvault diff <file>")
		fmt.Println()
		fmt.Println("Shows a unified diff between an export file and the stored data.")
		fmt.Println("Keys are masked on both sides.")
	case "reset":
		fmt.Println("chatvault reset [--force]")
		fmt.Println()
		fmt.Println("Deletes all APIs, the conversation, the selection and the encryption key.")
		fmt.Println("The theme and the security event log are kept.")
	case "theme":
		fmt.Println("chatvault theme [light|dark|blue|purple]")
		fmt.Println()
		fmt.Println("Prints the current theme, or stores a new one.")
	case "report":
		fmt.Println("chatvault report [--json]")
		fmt.Println()
		fmt.Println("Summarizes APIs, providers, conversation size and last activity.")
	case "status":
		fmt.Println("chatvault status")
		fmt.Println()
		fmt.Println("Shows store status including:")
		fmt.Println("  - Key state and cipher")
		fmt.Println("  - How each dataset is stored")
		fmt.Println("  - API and conversation counts")
		fmt.Println("  - Git warnings when the store could be committed")
	case "events":
		fmt.Println("chatvault events [--clear]")
		fmt.Println()
		fmt.Println("Prints the last 50 security events (rejected input, rate limits).")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --clear   Empty the event log")
	case "compact":
		fmt.Println("chatvault compact")
		fmt.Println()
		fmt.Println("Compacts the store to reclaim unused disk space.")
		fmt.Println("This is automatically done after 'rm' and 'reset'.")
	case "completion":
		fmt.Println("chatvault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(chatvault completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(chatvault completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  chatvault completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
