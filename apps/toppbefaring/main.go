package main

import (
	"fmt"
	"os"

	"github.com/moerenett/toppbefaring-services/models/common"
	"github.com/spf13/cobra"
)

var appContext *common.Context

var rootCmd = &cobra.Command{
	Use:   "toppbefaring",
	Short: "Uploads survey photos to the document grid, linked to the masts they show",
	Long: `toppbefaring takes a folder of geotagged survey photos, matches each
photo to the nearest mast in the feature layer, and uploads it to the
document grid with the mast's attributes attached. The upload log
keeps photos from being uploaded twice, so a folder can be run as many
times as it takes.

Configuration comes from a .env file. Set TOPPBEFARING_CONFIG to pick
which one (.env.demo, .env.production and so on) and
TOPPBEFARING_CONFIG_DIR to say which directory it lives in.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		appContext = common.NewContext()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appContext != nil {
			appContext.Close()
		}
	},
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// resolveFolder picks the folder a command works on: the argument when
// one was given, the configured UPLOAD_FOLDER otherwise.
func resolveFolder(args []string) (string, error) {
	folder := appContext.Config.UploadFolder
	if len(args) > 0 {
		folder = args[0]
	}
	if folder == "" {
		return "", fmt.Errorf("No folder to process: pass one as an argument or set UPLOAD_FOLDER")
	}
	return folder, nil
}
