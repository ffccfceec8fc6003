package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Move a task to another column",
	Args:  cobra.ExactArgs(2),
	Run:   moveTask,
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	Run:     removeTask,
}

func moveTask(cmd *cobra.Command, args []string) {
	status, err := parseStatusArg(args[1])
	if err != nil {
		fatal("%v", err)
	}
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		fatal("%v", err)
	}
	ok, err := ws.Tasks.ChangeStatus(ctx, args[0], status)
	if err != nil {
		fatal("%v", err)
	}
	if !ok {
		fatal("Task not found: %s", args[0])
	}
	fmt.Printf("%s Task %s moved to %s\n", statusIcon(status), args[0], status)
}

func removeTask(cmd *cobra.Command, args []string) {
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		fatal("%v", err)
	}
	if !ws.Tasks.Delete(ctx, args[0]) {
		fatal("Task not found: %s", args[0])
	}
	fmt.Printf("✓ Task deleted: %s\n", args[0])
}
