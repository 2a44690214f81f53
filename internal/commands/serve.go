package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/balkashynov/todo/internal/mcp"
	"github.com/balkashynov/todo/internal/server"
	"github.com/balkashynov/todo/internal/store"
	"github.com/balkashynov/todo/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive task list",
	Long: `Open the full-screen task list.

Keys:
  ↑/↓ or k/j    Navigate tasks
  space         Toggle done
  a             Add a task (smart syntax works here too)
  e             Edit selected task
  d             Delete selected task
  K/J           Move selected task up/down
  s             Add a subtask
  1-9           Toggle a subtask
  t             Switch light/dark theme
  c             Clear all tasks
  esc/q         Quit`,
	Args: cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return tui.RunListTUI(s, cfg.Policy())
	}),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task list as a JSON API",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		addr := cfg.Server.Addr
		if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
			addr = flagAddr
		}

		if !verbose(cmd) {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.NewServer(s, server.Options{
			Policy:  cfg.Policy(),
			Logger:  logger(cmd),
			Verbose: verbose(cmd),
		})
		cmd.Printf("Serving on http://%s (Ctrl+C to stop)\n", addr)
		return srv.Run(ctx, addr)
	}),
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the task list to MCP clients over stdio",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return mcp.Serve(mcp.NewServer(s, cfg.Policy(), version))
	}),
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8080)")
}
