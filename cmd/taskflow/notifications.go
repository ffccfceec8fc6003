package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	readAllFlag bool
	readFlag    string
	removeFlag  string
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Show and manage notifications",
	Run:     manageNotifications,
}

func init() {
	notificationsCmd.Flags().BoolVar(&readAllFlag, "read-all", false, "Mark every notification as read")
	notificationsCmd.Flags().StringVar(&readFlag, "read", "", "Mark one notification as read")
	notificationsCmd.Flags().StringVar(&removeFlag, "rm", "", "Remove one notification")
}

func manageNotifications(cmd *cobra.Command, args []string) {
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		fatal("%v", err)
	}
	inbox := ws.Notifications

	if readFlag != "" && !inbox.MarkRead(ctx, readFlag) {
		fatal("Notification not found: %s", readFlag)
	}
	if removeFlag != "" && !inbox.Remove(ctx, removeFlag) {
		fatal("Notification not found: %s", removeFlag)
	}
	if readAllFlag {
		fmt.Printf("Marked %d notifications as read\n", inbox.MarkAllRead(ctx))
	}

	items := inbox.List()
	if len(items) == 0 {
		fmt.Println("No notifications.")
		return
	}
	fmt.Printf("Notifications (%d unread)\n", inbox.Unread())
	for _, n := range items {
		marker := "●"
		if n.Read {
			marker = " "
		}
		fmt.Printf("%s %s  %s\n", marker, n.Timestamp.Format("2006-01-02 15:04"), n.Title)
		fmt.Printf("    %s [%s]\n", n.Message, n.ID)
	}
}
