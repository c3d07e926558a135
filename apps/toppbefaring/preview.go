package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/moerenett/toppbefaring-services/ingest"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [folder]",
	Short: "Show what an upload of the folder would do, without uploading",
	Long: `preview reads each photo's position and matches it against the mast
layer exactly the way upload would, then prints the outcome. Nothing
is uploaded, resized or written to the upload log.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	folder, err := resolveFolder(args)
	if err != nil {
		return err
	}

	previewer := ingest.NewPreviewer(appContext, folder)
	rows, err := previewer.Run()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Printf("No photos in %s\n", folder)
		return nil
	}

	wouldUpload := 0
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "FILE\tPOSITION\tMAST\tDISTANCE\tOUTCOME")
	for _, row := range rows {
		if !row.AlreadyUploaded && row.Error == "" {
			wouldUpload++
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			row.FileName, previewPosition(row), previewMast(row),
			previewDistance(row), previewOutcome(row))
	}
	err = writer.Flush()
	if err != nil {
		return err
	}
	fmt.Printf("\n%d of %d photos would upload\n", wouldUpload, len(rows))
	return nil
}

func previewPosition(row *ingest.PreviewRow) string {
	if !row.HasPosition {
		return "-"
	}
	return fmt.Sprintf("%.6f,%.6f", row.Latitude, row.Longitude)
}

func previewMast(row *ingest.PreviewRow) string {
	if row.Match == nil {
		return "-"
	}
	return row.Match.Mast.Driftsmerking()
}

func previewDistance(row *ingest.PreviewRow) string {
	if row.Match == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f m", row.Match.Distance)
}

// previewOutcome reports what the upload run would do with the photo.
// Unmatched photos still upload, so missing gps or a missing mast only
// qualifies the outcome.
func previewOutcome(row *ingest.PreviewRow) string {
	switch {
	case row.Error != "":
		return "error: " + row.Error
	case row.AlreadyUploaded:
		return "already uploaded"
	case !row.HasPosition:
		return "would upload, no gps position"
	case row.Match == nil:
		return "would upload, no mast in range"
	default:
		return "would upload"
	}
}
