package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/spf13/cobra"
)

var statsRunLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show upload log totals and recent runs",
	Long: `stats reports how many photos the upload log holds and how many are
failed and waiting for a retry, then lists the most recent runs from
the stats database when one is configured.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRunLimit, "runs", 10, "how many recent runs to list")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	uploadedCount, failedCount, err := appContext.Tracker.Counts()
	if err != nil {
		return err
	}
	fmt.Printf("Upload log: %d photos uploaded, %d failed and waiting for retry\n",
		uploadedCount, failedCount)

	if appContext.RunStore == nil {
		fmt.Println("No stats database configured; set STATS_DB_PATH to record runs.")
		return nil
	}
	runs, err := appContext.RunStore.ListRuns(statsRunLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs yet.")
		return nil
	}

	fmt.Println()
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "STARTED\tOPERATION\tFOLDER\tSCANNED\tUPLOADED\tSKIPPED\tFAILED\tTOOK")
	for _, run := range runs {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			run.StartedAt.Local().Format(constants.TimestampLayout),
			run.Operation, run.Folder, run.Scanned, run.Uploaded,
			run.Skipped, run.Failed, run.RunTime().Round(time.Second))
	}
	return writer.Flush()
}
