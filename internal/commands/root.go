package commands

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todo/internal/config"
	"github.com/balkashynov/todo/internal/db"
	"github.com/balkashynov/todo/internal/filestore"
	"github.com/balkashynov/todo/internal/models"
	"github.com/balkashynov/todo/internal/storage"
	"github.com/balkashynov/todo/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// inputError marks bad arguments; they are reported but never fatal
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "A terminal to-do list",
	Long: `todo keeps an ordered to-do list with priorities, due dates, categories
and subtasks. Every change is written straight to disk.

Use it from the command line, the interactive list (todo ui), the built-in
assistant (todo chat), a local JSON API (todo serve) or an MCP client (todo mcp).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app holds what a single command invocation has opened
var app struct {
	cfg     *config.Config
	logger  *log.Logger
	backend storage.Storage
	store   *store.Store
}

// loadConfig reads configuration and applies the persistent flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if app.cfg != nil {
		return app.cfg, nil
	}

	explicit, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(explicit)
	if err != nil {
		return nil, err
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		cfg.Storage.Path = path
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app.cfg = cfg
	return cfg, nil
}

func logger(cmd *cobra.Command) *log.Logger {
	if app.logger == nil {
		if verbose(cmd) {
			app.logger = log.Default()
		} else {
			app.logger = log.New(io.Discard, "", 0)
		}
	}
	return app.logger
}

func verbose(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}

// openStore opens the configured backend and loads the task collection
func openStore(cmd *cobra.Command) (*store.Store, error) {
	if app.store != nil {
		return app.store, nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	path := cfg.Storage.Path
	var backend storage.Storage
	switch cfg.Storage.Backend {
	case config.BackendFile:
		if path == "" {
			if path, err = filestore.DefaultPath(); err != nil {
				return nil, err
			}
		}
		backend, err = filestore.Open(path)
	default:
		if path == "" {
			if path, err = db.DefaultPath(); err != nil {
				return nil, err
			}
		}
		backend, err = db.Open(path, db.Options{Verbose: verbose(cmd)})
	}
	if err != nil {
		return nil, err
	}
	logger(cmd).Printf("opened %s storage at %s", cfg.Storage.Backend, path)

	s, err := store.New(backend, store.WithLogger(logger(cmd)))
	if err != nil {
		backend.Close()
		return nil, err
	}

	app.backend = backend
	app.store = s
	return s, nil
}

// closeApp releases whatever the last command opened
func closeApp() error {
	var err error
	if app.backend != nil {
		err = app.backend.Close()
	}
	app.cfg = nil
	app.logger = nil
	app.backend = nil
	app.store = nil
	return err
}

// withStore wraps a command function to open the store first
func withStore(fn func(*cobra.Command, *store.Store, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		return report(cmd, fn(cmd, s, args))
	}
}

// report prints recoverable errors as a notice and passes storage failures on
func report(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	var (
		inputErr *inputError
		parseErr *models.ParseError
	)
	if errors.As(err, &inputErr) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrEmptyText) ||
		errors.Is(err, store.ErrIndexOutOfRange) ||
		errors.Is(err, store.ErrInvalidTheme) ||
		errors.As(err, &parseErr) {
		fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
		return nil
	}
	return err
}

func invalidf(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, invalidf("invalid task ID '%s'", arg)
	}
	return id, nil
}

// parsePosition turns a 1-based position into an index
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, invalidf("invalid position '%s'", arg)
	}
	return n - 1, nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "todo %s (commit %s, built %s)\n", version, commit, date)
	},
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeApp(); err == nil {
		err = cerr
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.todo/config.yaml then ./.todo/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Storage path override")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: sqlite or file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log storage and server activity to stderr")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(subCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.SetHelpCommand(helpCmd)
}
