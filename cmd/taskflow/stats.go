package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskflow/domain"
)

// now is swapped in tests.
var now = time.Now

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show board statistics",
	Run:   showStats,
}

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show the two-week timeline",
	Run:   showTimeline,
}

func showStats(cmd *cobra.Command, args []string) {
	ws, err := openWorkspace(commandContext(cmd))
	if err != nil {
		fatal("%v", err)
	}
	s := domain.Summarize(ws.Tasks.Tasks(), now())
	fmt.Printf("Total tasks:        %d\n", s.Total)
	fmt.Printf("Completed:          %d\n", s.Completed)
	fmt.Printf("Upcoming deadlines: %d\n", s.UpcomingDeadlines)
	fmt.Printf("Attachments:        %d\n", s.Attachments)
	fmt.Printf("Collaborators:      %d\n", s.Collaborators)
}

func showTimeline(cmd *cobra.Command, args []string) {
	ws, err := openWorkspace(commandContext(cmd))
	if err != nil {
		fatal("%v", err)
	}
	tl := domain.ProjectTimeline(ws.Tasks.Tasks(), now(), nil)
	if len(tl.Rows) == 0 {
		fmt.Println("No tasks found.")
		return
	}

	width := 0
	for _, row := range tl.Rows {
		width = max(width, len([]rune(row.Title)))
	}
	width = min(width, 32)

	var header strings.Builder
	for _, day := range tl.Days {
		fmt.Fprintf(&header, "%3d", day.Day())
	}
	fmt.Printf("%-*s %s\n", width, "", header.String())
	for _, row := range tl.Rows {
		var cells strings.Builder
		for _, active := range row.Active {
			if active {
				cells.WriteString("  █")
			} else {
				cells.WriteString("  ·")
			}
		}
		fmt.Printf("%-*s %s  %s\n", width, truncate(row.Title, width), cells.String(), remaining(row.DaysRemaining))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func remaining(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("%d days overdue", -days)
	case days == 0:
		return "due today"
	case days == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}
