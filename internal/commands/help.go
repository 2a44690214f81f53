package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todo/internal/chatbot"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show comprehensive help for todo",
	Long:  `Display detailed help for all todo commands and flags, or the help of one command.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			target, _, err := rootCmd.Find(args)
			if err == nil && target != rootCmd {
				target.Help()
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unknown help topic %q\n", args)
		}
		showCustomHelp(cmd.OutOrStdout())
	},
}

func showCustomHelp(w io.Writer) {
	fmt.Fprint(w, `
████████╗ ██████╗ ██████╗  ██████╗
╚══██╔══╝██╔═══██╗██╔══██╗██╔═══██╗
   ██║   ██║   ██║██║  ██║██║   ██║
   ██║   ██║   ██║██║  ██║██║   ██║
   ██║   ╚██████╔╝██████╔╝╚██████╔╝
   ╚═╝    ╚═════╝ ╚═════╝  ╚═════╝

todo - a terminal to-do list

TASKS:

  add <text>              Add a task with smart parsing
    -p, --priority        Priority: low|medium|high
    -d, --due             Due date (yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, 3 days, 2 weeks)
    -c, --category        Category

    Smart syntax:
      #category     Set category
      +priority     Set priority (low/medium/high)
      due:3days     Set due date

    Example:
      todo add "Buy milk #home +high due:tomorrow"

  edit <id> <text>        Change a task's text
  set <id>                Change priority, due date or category (--priority, --due, --category)
  done <id>               Mark task as completed
  undone <id>             Mark task as pending
  toggle <id>             Flip done/pending
  rm <id>                 Delete a task
  mv <from> <to>          Move a task (1-based positions)
  clear [--yes]           Delete every task

SUBTASKS:

  sub add <id> <text>     Append a subtask
  sub done <id> <n>       Mark subtask n as completed
  sub undone <id> <n>     Mark subtask n as pending
  sub rm <id> <n>         Delete subtask n
  sub mv <id> <from> <to> Move a subtask

VIEWING:

  ls                      List tasks with subtasks and progress
    --pending | --done    Filter by status
    -c, --category        Filter by category
    --json                JSON output
  search <query>          Ranked search across text, category and subtasks
  progress [--policy]     Progress bar (tasks|subtasks|rollup)
  ui                      Interactive list (see todo help ui for keys)

DATA:

  export <format> [-o f]  Export as json, yaml, pdf or word
  import <file.json>      Replace the list with a JSON export

ASSISTANT & PROFILE:

  ask <question>          One-shot answer from the assistant
  chat                    Interactive assistant
  name [name]             Show or set your name
  theme [light|dark]      Show or set the color theme

INTEGRATIONS:

  serve [--addr]          JSON API on 127.0.0.1:8080
  mcp                     MCP server on stdio
  config                  Print the effective configuration
  version                 Print version information

`)
	showAssistantTopics(w)
	fmt.Fprint(w, `
GLOBAL FLAGS:

  --config <file>         Use this config file only
  --db <path>             Storage path override
  --backend sqlite|file   Storage backend override
  -v, --verbose           Log storage and server activity

`)
}

// showAssistantTopics lists what todo ask understands, in match order
func showAssistantTopics(w io.Writer) {
	fmt.Fprintln(w, "ASSISTANT TOPICS (todo ask \"...\"):")
	fmt.Fprintln(w)
	for _, r := range chatbot.Rules() {
		fmt.Fprintf(w, "  %-12s %s\n", r.Name, strings.Join(r.Triggers, ", "))
	}
}
