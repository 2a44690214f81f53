package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todo/internal/export"
	"github.com/balkashynov/todo/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <json|yaml|pdf|word>",
	Short: "Export the task list to a file",
	Long: `Write the whole task list in the given format.

The file defaults to tasks.<ext> in the current directory; use -o - for stdout.
Only JSON exports can be imported back.`,
	Args: cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		format, err := export.ParseFormat(args[0])
		if err != nil {
			return invalidf("%v", err)
		}

		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			path = format.Filename()
		}
		tasks := s.Snapshot()

		if path == "-" {
			return export.Write(cmd.OutOrStdout(), format, tasks)
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := export.Write(f, format, tasks); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "📦 Exported %d tasks to %s\n", len(tasks), path)
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Replace the task list with a JSON export",
	Long: `Replace every task with the contents of a JSON export.

A file that is not a list of tasks is rejected and the current list is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return invalidf("cannot open %s: %v", args[0], err)
		}
		defer f.Close()

		if err := s.ImportJSON(f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📥 Imported %d tasks from %s\n", s.Len(), args[0])
		return nil
	}),
}

func init() {
	for _, f := range export.Formats {
		exportCmd.ValidArgs = append(exportCmd.ValidArgs, string(f))
	}
	exportCmd.Flags().StringP("output", "o", "", "Output file (default tasks.<ext>, - for stdout)")
}
