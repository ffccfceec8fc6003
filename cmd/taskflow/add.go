package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/domain"
)

var (
	addTitle         string
	addDescription   string
	addPriority      string
	addDue           string
	addStatus        string
	addAttachments   int
	addCollaborators int
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	Long:  `Add a new task to the board. New tasks land in the To Do column unless --status says otherwise.`,
	Run:   addTask,
}

func init() {
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Task title (required)")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Task description")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", string(domain.PriorityMedium), "Priority: low, medium or high")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	addCmd.Flags().StringVarP(&addStatus, "status", "s", string(domain.StatusTodo), "Initial status")
	addCmd.Flags().IntVar(&addAttachments, "attachments", 0, "Number of attachments")
	addCmd.Flags().IntVar(&addCollaborators, "collaborators", 0, "Number of collaborators")
	if err := addCmd.MarkFlagRequired("title"); err != nil {
		panic(fmt.Sprintf("Failed to mark title flag as required: %v", err))
	}
}

func addTask(cmd *cobra.Command, args []string) {
	draft, err := buildDraft()
	if err != nil {
		fatal("%v", err)
	}

	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		fatal("%v", err)
	}
	task, err := ws.Tasks.Create(ctx, draft)
	if err != nil {
		fatal("Failed to create task: %v", err)
	}

	fmt.Printf("✓ Task created: %s\n", task.ID)
	fmt.Printf("  Title: %s\n", task.Title)
	if task.Description != "" {
		fmt.Printf("  Description: %s\n", task.Description)
	}
	fmt.Printf("  Priority: %s, %s\n", task.Priority, formatDue(task))
}

func buildDraft() (domain.Draft, error) {
	priority, err := domain.ParsePriority(addPriority)
	if err != nil {
		return domain.Draft{}, err
	}
	status, err := parseStatusArg(addStatus)
	if err != nil {
		return domain.Draft{}, err
	}
	due, err := domain.ParseDate(addDue)
	if err != nil {
		return domain.Draft{}, err
	}
	return domain.Draft{
		Title:         addTitle,
		Description:   addDescription,
		Priority:      priority,
		DueDate:       due,
		Attachments:   addAttachments,
		Collaborators: addCollaborators,
		Status:        status,
	}, nil
}
