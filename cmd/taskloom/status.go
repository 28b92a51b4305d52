package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/agent"
)

var historyDays int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent and queue state",
	RunE:  runStatus,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent pipeline activity",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "How many days back to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	assistant, cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	assistant.ReplayApproved()

	statuses := assistant.AgentStatuses()
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println("Agents:")
	for _, id := range ids {
		fmt.Printf("  %s %s\n", statusDot(statuses[id]), id)
	}

	fmt.Printf("\nPending confirmations: %d\n", len(assistant.PendingConfirmations()))
	fmt.Printf("Confirmed tasks:       %d\n", len(assistant.Tasks()))
	fmt.Printf("Data directory:        %s\n", cfg.Storage.DataDir)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	assistant, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	age := time.Duration(historyDays) * 24 * time.Hour
	episodes, err := assistant.History(age, "")
	if err != nil {
		return err
	}
	if len(episodes) == 0 {
		fmt.Printf("No activity in the last %d day(s).\n", historyDays)
		return nil
	}

	for _, ep := range episodes {
		fmt.Printf("%s  %-20s %s\n",
			ep.Timestamp.Local().Format("2006-01-02 15:04"),
			ep.EventType, ep.Content)
	}
	return nil
}

func statusDot(s agent.Status) string {
	switch s {
	case agent.StatusProcessing:
		return color.YellowString("●")
	case agent.StatusError:
		return color.RedString("●")
	default:
		return color.GreenString("●")
	}
}
