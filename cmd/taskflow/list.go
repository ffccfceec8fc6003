package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/domain"
)

var statusFilter string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks by column",
	Long:  `List the tasks of the board grouped by column, optionally limited to one status.`,
	Run:   listTasks,
}

func init() {
	listCmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Only show tasks with this status (todo, in-progress, done)")
}

func listTasks(cmd *cobra.Command, args []string) {
	var filter domain.Status
	if statusFilter != "" {
		s, err := parseStatusArg(statusFilter)
		if err != nil {
			fatal("%v", err)
		}
		filter = s
	}

	ws, err := openWorkspace(commandContext(cmd))
	if err != nil {
		fatal("%v", err)
	}
	tasks := ws.Tasks.Tasks()
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}

	cols := domain.Partition(tasks)
	for _, col := range []struct {
		name   string
		status domain.Status
		tasks  []domain.Task
	}{
		{"To Do", domain.StatusTodo, cols.Todo},
		{"In Progress", domain.StatusInProgress, cols.InProgress},
		{"Done", domain.StatusDone, cols.Done},
	} {
		if filter != "" && col.status != filter {
			continue
		}
		fmt.Printf("%s (%d)\n", col.name, len(col.tasks))
		for _, t := range col.tasks {
			fmt.Printf("  %s [%s] %s\n", statusIcon(t.Status), t.ID, t.Title)
			fmt.Printf("     %s priority, %s\n", t.Priority, formatDue(t))
		}
		fmt.Println()
	}
}
