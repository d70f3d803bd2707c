package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/config"
	"github.com/ksaito/kotoba/internal/engine"
	"github.com/ksaito/kotoba/internal/errors"
	"github.com/ksaito/kotoba/internal/store"
	"github.com/ksaito/kotoba/internal/translate"
	"github.com/ksaito/kotoba/internal/web"
)

// stderrNotifier prints lifecycle notifications to stderr so stdout
// stays machine-readable.
type stderrNotifier struct{}

func (stderrNotifier) Success(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}

func (stderrNotifier) Failure(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "kotoba",
		Usage:   "Personal translation flashcards",
		Version: Version,
		Commands: []*cli.Command{
			translateCmd(db, cfg, logger),
			listCmd(db),
			calendarCmd(db),
			deleteCmd(db, logger),
			deleteDayCmd(db, logger),
			exportCmd(db, logger),
			webCmd(db),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// newEngine builds a one-shot engine over the CLI's database handle.
func newEngine(db *sql.DB, logger *zap.Logger) *engine.Engine {
	return engine.New(store.NewSQLiteStore(db), logger, stderrNotifier{})
}

// translateCmd creates the translate command.
func translateCmd(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "translate",
		Usage:     "Translate text, optionally saving it as a flashcard",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Source language code (en or ja)"},
			&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "Target language code (en or ja)"},
			&cli.BoolFlag{Name: "save", Usage: "Persist the translated card"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("text argument is required"))
			}
			text := c.Args().First()

			source := card.LanguageCode(c.String("source"))
			if source == "" {
				source = card.LanguageCode(cfg.DefaultSourceLang)
			}
			target := card.LanguageCode(c.String("target"))
			if target == "" {
				target = card.LanguageCode(cfg.DefaultTargetLang)
			}
			if !source.Valid() || !target.Valid() {
				return outputError(errors.NewInvalidRequest("language codes must be one of: en, ja"))
			}

			translator, err := translate.New(cfg)
			if err != nil {
				return outputError(err)
			}

			output, err := translator.Translate(c.Context, text, source, target)
			if err != nil {
				return outputError(err)
			}

			eng := newEngine(db, logger)
			rec := eng.AddDraft(text, output, source, target)
			if c.Bool("save") {
				if err := eng.Save(c.Context, rec.Timestamp); err != nil {
					return outputError(err)
				}
				rec = *eng.Card(rec.Timestamp)
			}

			return outputJSON(rec)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List saved vocabulary, newest first",
		ArgsUsage: "[date-prefix]",
		Action: func(c *cli.Context) error {
			prefix := ""
			if c.NArg() > 0 {
				prefix = c.Args().First()
			}

			st := store.NewSQLiteStore(db)
			rows, err := st.QueryRecordsByPrefix(c.Context, prefix)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"items": rows,
				"count": len(rows),
			})
		},
	}
}

// calendarCmd creates the calendar command.
func calendarCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "calendar",
		Usage: "List days with saved vocabulary and their card counts",
		Action: func(c *cli.Context) error {
			st := store.NewSQLiteStore(db)
			days, err := st.QueryDayCounts(c.Context)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"days":  days,
				"count": len(days),
			})
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete one saved card and update its calendar entry",
		ArgsUsage: "<timestamp>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("timestamp argument is required"))
			}
			key := c.Args().First()

			eng := newEngine(db, logger)
			if _, err := eng.LoadByDatePrefix(c.Context, card.DateOf(key)); err != nil {
				return outputError(err)
			}
			if err := eng.Delete(c.Context, key); err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"deleted": true, "timestamp": key})
		},
	}
}

// deleteDayCmd creates the delete-day command.
func deleteDayCmd(db *sql.DB, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "delete-day",
		Usage:     "Delete every card matching a date prefix",
		ArgsUsage: "<date-prefix>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "confirm", Usage: "Confirm bulk deletion"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("date-prefix argument is required"))
			}
			if !c.Bool("confirm") {
				return outputError(errors.NewInvalidRequest("pass --confirm to delete in bulk"))
			}
			prefix := c.Args().First()

			eng := newEngine(db, logger)
			removed, err := eng.DeleteAllForDatePrefix(c.Context, prefix)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"deleted": removed, "prefix": prefix})
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a day's vocabulary as a markdown digest",
		ArgsUsage: "<date-prefix>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path (.md). Defaults to the exports directory."},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("date-prefix argument is required"))
			}

			input := engine.ExportInput{
				Prefix: c.Args().First(),
				Path:   c.String("output"),
				Dir:    defaultExportDir(),
			}

			eng := newEngine(db, logger)
			output, err := eng.ExportDigest(c.Context, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the vocabulary browser UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8765, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			st := store.NewSQLiteStore(db)
			srv := web.NewServer(st, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// defaultExportDir returns the exports directory under the kotoba home.
func defaultExportDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "exports"
	}
	return filepath.Join(homeDir, ".kotoba", "exports")
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if kErr, ok := err.(*errors.KotobaError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", kErr.Code, kErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
