package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/imaging"
	"github.com/moerenett/toppbefaring-services/ingest"
	"github.com/moerenett/toppbefaring-services/util"
	"github.com/spf13/cobra"
)

var (
	maxWidth    int
	maxHeight   int
	jpegQuality int
	overwrite   bool
	remoteCheck bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [folder]",
	Short: "Upload the photos in a folder",
	Long: `upload runs the folder through the pipeline: each photo is hashed,
its GPS position read, matched against the mast layer, optionally
downscaled, checked against the upload log, and uploaded. Photos that
fail are logged and retried on the next run; photos already in the
upload log are skipped.

Pass --max-width and/or --max-height to downscale large photos before
upload. By default the downscaled copy is written next to the original
with a _resized suffix; --overwrite replaces the original instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().IntVar(&maxWidth, "max-width", 0,
		"downscale photos wider than this many pixels before upload")
	uploadCmd.Flags().IntVar(&maxHeight, "max-height", 0,
		"downscale photos taller than this many pixels before upload")
	uploadCmd.Flags().IntVar(&jpegQuality, "quality", constants.DefaultJpegQuality,
		"jpeg quality of downscaled copies, 1-100")
	uploadCmd.Flags().BoolVar(&overwrite, "overwrite", false,
		"downscale originals in place instead of writing _resized copies")
	uploadCmd.Flags().BoolVar(&remoteCheck, "remote-check", false,
		"also ask the document grid whether it already holds each photo")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	folder, err := resolveFolder(args)
	if err != nil {
		return err
	}

	// One upload at a time per machine, or two runs would race each
	// other through the upload log.
	pidFile := filepath.Join(appContext.Config.LogDir, "toppbefaring_upload.pid")
	if util.IsRunningInOtherProcess(pidFile) {
		return fmt.Errorf("Another upload is already running (pid file %s)", pidFile)
	}
	err = util.WritePidFile(pidFile)
	if err != nil {
		return fmt.Errorf("Cannot write pid file %s: %v", pidFile, err)
	}
	defer util.DeletePidFile(pidFile)

	uploader := ingest.NewUploader(appContext, folder)
	uploader.RemoteCheck = remoteCheck
	if maxWidth > 0 || maxHeight > 0 {
		uploader.ResizeOpts = &imaging.ResizeOptions{
			MaxWidth:  maxWidth,
			MaxHeight: maxHeight,
			Quality:   jpegQuality,
			Overwrite: overwrite,
		}
	}

	run, err := uploader.Run()
	if err != nil {
		return err
	}
	fmt.Printf("Run %s finished in %s\n", run.ID, run.RunTime().Round(time.Millisecond))
	fmt.Printf("%d scanned, %d uploaded, %d skipped, %d failed\n",
		run.Scanned, run.Uploaded, run.Skipped, run.Failed)
	if uploader.WorkResult.HasErrors() {
		fmt.Printf("%d errors; details are in the log under %s\n",
			len(uploader.WorkResult.Errors), appContext.Config.LogDir)
	}
	return nil
}
