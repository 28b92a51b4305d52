package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/pkg/models"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show the confirmed task list",
	RunE:  runTasks,
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Check the task list for conflicts",
	Long: `Analyze the confirmed task list for duplicates, same-day deadline
collisions per assignee, and tasks missing an assignee or deadline.`,
	RunE: runConflicts,
}

func runTasks(cmd *cobra.Command, args []string) error {
	assistant, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	assistant.ReplayApproved()

	tasks := assistant.Tasks()
	if len(tasks) == 0 {
		fmt.Println("No confirmed tasks. Run 'taskloom review' to approve pending items.")
		return nil
	}

	for i, task := range tasks {
		deadline := task.Deadline
		if deadline == "" {
			deadline = "-"
		}
		fmt.Printf("%2d. [%s] %s (%s, due %s)\n",
			i+1, priorityLabel(task.Priority), task.Task, task.Assignee, deadline)
	}
	return nil
}

func runConflicts(cmd *cobra.Command, args []string) error {
	assistant, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	assistant.ReplayApproved()

	conflicts := assistant.DetectConflicts(context.Background())
	if len(conflicts) == 0 {
		fmt.Println(color.GreenString("No conflicts detected."))
		return nil
	}

	for _, c := range conflicts {
		fmt.Printf("%s [%s] %s (tasks %v)\n",
			severityLabel(c.Severity), c.Type, c.Description, c.AffectedTasks)
	}
	fmt.Printf("\n%d conflict(s) found.\n", len(conflicts))
	return nil
}

func priorityLabel(p models.Priority) string {
	switch p {
	case models.PriorityUrgent:
		return color.RedString("urgent")
	case models.PriorityHigh:
		return color.YellowString("high")
	case models.PriorityMedium:
		return color.CyanString("medium")
	default:
		return "normal"
	}
}

func severityLabel(s models.Severity) string {
	switch s {
	case models.SeverityHigh:
		return color.RedString("HIGH  ")
	case models.SeverityMedium:
		return color.YellowString("MEDIUM")
	default:
		return color.CyanString("LOW   ")
	}
}
