package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ksaito/kotoba/internal/config"
	"github.com/ksaito/kotoba/internal/db"
	"github.com/ksaito/kotoba/internal/engine"
	"github.com/ksaito/kotoba/internal/mcp"
	"github.com/ksaito/kotoba/internal/store"
	"github.com/ksaito/kotoba/internal/translate"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// logNotifier routes lifecycle notifications to the structured log. Used
// in MCP mode where stderr toasts would interleave with transport noise.
type logNotifier struct {
	log *zap.Logger
}

func (n logNotifier) Success(title, message string) {
	n.log.Info(title, zap.String("detail", message))
}

func (n logNotifier) Failure(title, message string) {
	n.log.Warn(title, zap.String("detail", message))
}

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"translate": true, "list": true, "calendar": true,
	"delete": true, "delete-day": true, "export": true,
	"web": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _  _____ _____ ___  ___   _
  | |/ / _ \_   _/ _ \| _ ) /_\
  |   < (_) || || (_) | _ \/ _ \
  |_|\_\___/ |_| \___/|___/_/ \_\

  Personal translation flashcards

  Usage: kotoba <command> [options]
         kotoba --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, zap.NewNop())
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".kotoba")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	db.ConfigurePool(database, cfg)

	// zap writes to stderr, keeping stdout clean for command output
	// and the MCP stdio transport.
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("config lists unknown disabled tools", zap.Strings("tools", unknown))
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(database, cfg, logger)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'kotoba --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	st := store.NewSQLiteStore(database)
	eng := engine.New(st, logger, logNotifier{logger})
	translator, err := translate.New(cfg)
	if err != nil {
		// The server still serves vocabulary tools without a backend.
		logger.Warn("translation backend unavailable", zap.Error(err))
		translator = nil
	}
	if err := mcp.Run(eng, st, translator, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
