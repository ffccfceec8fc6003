package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"taskflow/board"
	"taskflow/domain"
	"taskflow/storage"
)

var (
	workspaceFlag string
	seedFlag      bool
)

var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "Kanban board in your terminal",
	Long: `taskflow manages a task board stored under .taskflow/ in the workspace
directory. Every change is recorded in the notification log.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "Workspace directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&seedFlag, "seed", false, "Fill a new workspace with the sample board")

	rootCmd.AddCommand(addCmd, listCmd, editCmd, moveCmd, rmCmd, statsCmd, timelineCmd, notificationsCmd, prefsCmd)
}

func getWorkspaceDir() (string, error) {
	if workspaceFlag != "" {
		return workspaceFlag, nil
	}
	return os.Getwd()
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func newLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(log.WarnLevel)
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openWorkspace loads the board stored in the workspace directory.
func openWorkspace(ctx context.Context) (*board.Workspace, error) {
	dir, err := getWorkspaceDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace directory: %w", err)
	}
	kv, err := storage.NewFile(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return board.Open(ctx, kv, "", board.Config{Seed: seedFlag, Logger: newLogger()})
}

// parseStatusArg accepts the stored status names plus a few spellings
// people type.
func parseStatusArg(raw string) (domain.Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "todo", "to-do":
		return domain.StatusTodo, nil
	case "in-progress", "inprogress", "doing":
		return domain.StatusInProgress, nil
	case "completed", "done":
		return domain.StatusDone, nil
	}
	return domain.ParseStatus(raw)
}

func statusIcon(s domain.Status) string {
	switch s {
	case domain.StatusDone:
		return "✓"
	case domain.StatusInProgress:
		return "→"
	default:
		return "○"
	}
}

func formatDue(t domain.Task) string {
	return "due " + t.DueDate.Format("2006-01-02")
}
