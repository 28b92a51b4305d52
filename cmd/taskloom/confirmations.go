package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/tui"
)

var rejectReason string

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List items awaiting confirmation",
	RunE:  runPending,
}

var approveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a confirmation item",
	Args:  cobra.ExactArgs(1),
	RunE:  runApprove,
}

var rejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a confirmation item",
	Args:  cobra.ExactArgs(1),
	RunE:  runReject,
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review pending items interactively",
	RunE:  runReview,
}

func init() {
	rejectCmd.Flags().StringVar(&rejectReason, "reason", "", "Why the item is rejected")
}

func runPending(cmd *cobra.Command, args []string) error {
	assistant, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	pending := assistant.PendingConfirmations()
	if len(pending) == 0 {
		fmt.Println("Nothing awaiting confirmation.")
		return nil
	}

	for _, item := range pending {
		task, _ := item.Data["task"].(string)
		assignee, _ := item.Data["assignee"].(string)
		fmt.Printf("%s  %s  %s (%s, confidence %.2f)\n",
			color.YellowString(item.ID),
			item.CreatedAt.Format("2006-01-02 15:04"),
			task, assignee, item.Confidence)
	}
	fmt.Printf("\n%d item(s) pending.\n", len(pending))
	return nil
}

func runApprove(cmd *cobra.Command, args []string) error {
	assistant, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	assistant.Start(context.Background())
	defer assistant.Stop()
	assistant.ReplayApproved()

	item, err := assistant.Approve(args[0], nil)
	if err != nil {
		return err
	}
	waitIdle(assistant, 10*time.Second)

	task, _ := item.Data["task"].(string)
	fmt.Printf("%s approved: %s\n", color.GreenString("✓"), task)
	fmt.Printf("Task list now has %d task(s).\n", len(assistant.Tasks()))
	return nil
}

func runReject(cmd *cobra.Command, args []string) error {
	assistant, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	assistant.Start(context.Background())
	defer assistant.Stop()

	item, err := assistant.Reject(args[0], rejectReason)
	if err != nil {
		return err
	}
	waitIdle(assistant, 10*time.Second)

	task, _ := item.Data["task"].(string)
	fmt.Printf("%s rejected: %s\n", color.RedString("✗"), task)
	return nil
}

func runReview(cmd *cobra.Command, args []string) error {
	assistant, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	assistant.Start(context.Background())
	defer assistant.Stop()
	assistant.ReplayApproved()

	pending := assistant.PendingConfirmations()
	if len(pending) == 0 {
		fmt.Println("Nothing awaiting confirmation.")
		return nil
	}

	approved, rejected, err := tui.RunReview(assistant, pending)
	if err != nil {
		return err
	}
	waitIdle(assistant, 30*time.Second)

	fmt.Printf("\n%s approved, %s rejected. Task list has %d task(s).\n",
		color.GreenString("%d", approved),
		color.RedString("%d", rejected),
		len(assistant.Tasks()))
	return nil
}
