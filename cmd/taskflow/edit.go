package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/domain"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task",
	Long:  `Change fields of an existing task. Only the flags given are applied.`,
	Args:  cobra.ExactArgs(1),
	Run:   editTask,
}

var (
	editTitle         string
	editDescription   string
	editPriority      string
	editDue           string
	editStatus        string
	editAttachments   int
	editCollaborators int
)

func init() {
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "New priority")
	editCmd.Flags().StringVar(&editDue, "due", "", "New due date")
	editCmd.Flags().StringVarP(&editStatus, "status", "s", "", "New status")
	editCmd.Flags().IntVar(&editAttachments, "attachments", 0, "Number of attachments")
	editCmd.Flags().IntVar(&editCollaborators, "collaborators", 0, "Number of collaborators")
}

func editTask(cmd *cobra.Command, args []string) {
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		fatal("%v", err)
	}
	task, ok := ws.Tasks.Get(args[0])
	if !ok {
		fatal("Task not found: %s", args[0])
	}
	if err := applyEdits(cmd, &task); err != nil {
		fatal("%v", err)
	}
	if _, err := ws.Tasks.Update(ctx, task); err != nil {
		fatal("Failed to update task: %v", err)
	}
	fmt.Printf("✓ Task updated: %s\n", task.ID)
	fmt.Printf("  %s [%s] %s (%s priority, %s)\n", statusIcon(task.Status), task.ID, task.Title, task.Priority, formatDue(task))
}

func applyEdits(cmd *cobra.Command, task *domain.Task) error {
	flags := cmd.Flags()
	if flags.Changed("title") {
		task.Title = editTitle
	}
	if flags.Changed("description") {
		task.Description = editDescription
	}
	if flags.Changed("priority") {
		p, err := domain.ParsePriority(editPriority)
		if err != nil {
			return err
		}
		task.Priority = p
	}
	if flags.Changed("due") {
		due, err := domain.ParseDate(editDue)
		if err != nil {
			return err
		}
		task.DueDate = due
	}
	if flags.Changed("status") {
		s, err := parseStatusArg(editStatus)
		if err != nil {
			return err
		}
		task.Status = s
	}
	if flags.Changed("attachments") {
		task.Attachments = editAttachments
	}
	if flags.Changed("collaborators") {
		task.Collaborators = editCollaborators
	}
	return nil
}
