package constants

const (
	StageScanned      = "Scanned"
	StageGeoExtracted = "GeoExtracted"
	StageMatched      = "Matched"
	StageUnmatched    = "Unmatched"
	StageResized      = "Resized"
	StageDedupChecked = "DedupChecked"
	StageUploaded     = "Uploaded"
	StageSkipped      = "Skipped"
	StageFailed       = "Failed"
)

type Stage struct {
	Name     string
	Order    int64
	Terminal bool
}

// UploadStages describes the per-photo pipeline. Matched and Unmatched
// share an order because they are alternative outcomes of the same
// step; an unmatched photo still moves through the later stages, its
// upload just carries no mast attributes. Resized only occurs when the
// caller asked for resizing.
var UploadStages = []Stage{
	{
		Name:  StageScanned,
		Order: 1,
	},
	{
		Name:  StageGeoExtracted,
		Order: 2,
	},
	{
		Name:  StageMatched,
		Order: 3,
	},
	{
		Name:  StageUnmatched,
		Order: 3,
	},
	{
		Name:  StageResized,
		Order: 4,
	},
	{
		Name:  StageDedupChecked,
		Order: 5,
	},
	{
		Name:     StageUploaded,
		Order:    6,
		Terminal: true,
	},
	{
		Name:     StageSkipped,
		Order:    6,
		Terminal: true,
	},
	{
		Name:     StageFailed,
		Order:    6,
		Terminal: true,
	},
}

// IsTerminalStage returns true if stageName marks the end of processing
// for a photo.
func IsTerminalStage(stageName string) bool {
	for _, stage := range UploadStages {
		if stage.Name == stageName {
			return stage.Terminal
		}
	}
	return false
}

// StageOrder returns the pipeline position of the named stage, or -1
// if the name is not a known stage.
func StageOrder(stageName string) int64 {
	for _, stage := range UploadStages {
		if stage.Name == stageName {
			return stage.Order
		}
	}
	return -1
}

// StatusForStage maps a terminal stage to the status recorded in the
// upload log. Non-terminal stages have no status and return "".
func StatusForStage(stageName string) string {
	switch stageName {
	case StageUploaded:
		return StatusOk
	case StageSkipped:
		return StatusSkipped
	case StageFailed:
		return StatusFailed
	}
	return ""
}
