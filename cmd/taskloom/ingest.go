package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var ingestAsText bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Extract action items from files",
	Long: `Run one or more files through the extraction pipeline.

Supported formats: .txt, .md, .markdown, .log. Extracted action items
land in the confirmation queue; run 'taskloom review' to approve them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestAsText, "text", false, "Treat arguments as literal text instead of file paths")
}

func runIngest(cmd *cobra.Command, args []string) error {
	assistant, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	assistant.Start(context.Background())
	defer assistant.Stop()

	before := len(assistant.PendingConfirmations())

	for _, arg := range args {
		if ingestAsText {
			if err := assistant.ProcessText(arg, "manual"); err != nil {
				return err
			}
			continue
		}
		if err := assistant.ProcessFile(arg); err != nil {
			color.Red("✗ %s: %v", arg, err)
			continue
		}
		fmt.Printf("%s %s\n", color.GreenString("✓"), arg)
	}

	waitIdle(assistant, 30*time.Second)

	added := len(assistant.PendingConfirmations()) - before
	if added > 0 {
		fmt.Printf("\n%d item(s) awaiting confirmation. Run %s to review.\n",
			added, color.CyanString("taskloom review"))
	} else {
		fmt.Println("\nNo action items found.")
	}
	return nil
}
