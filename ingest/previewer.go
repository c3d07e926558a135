package ingest

import (
	"errors"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/geomatch"
	"github.com/moerenett/toppbefaring-services/imaging"
	"github.com/moerenett/toppbefaring-services/models/common"
	"github.com/moerenett/toppbefaring-services/models/gis"
	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/moerenett/toppbefaring-services/tracker"
)

// PreviewRow is what the preview reports for one photo: where it is,
// which mast an upload would link it to, and whether the upload log
// already holds it.
type PreviewRow struct {
	FileName        string
	HasPosition     bool
	Latitude        float64
	Longitude       float64
	Match           *gis.MatchResult
	AlreadyUploaded bool
	Error           string
}

// Previewer does everything the Uploader does short of writing: no
// uploads, no resized copies, no rows in the upload log. It exists so
// a field engineer can see what a folder would do before committing
// to it.
type Previewer struct {
	Context      *common.Context
	Folder       string
	RadiusMeters float64
	WorkResult   *service.WorkResult

	masts []*gis.MastRecord
}

func NewPreviewer(context *common.Context, folder string) *Previewer {
	return &Previewer{
		Context:      context,
		Folder:       folder,
		RadiusMeters: context.Config.MatchRadiusMeters,
		WorkResult:   service.NewWorkResult(constants.OperationPreview),
	}
}

// Run previews every photo in the folder. Like the upload, it stops
// only for setup failures; a photo that cannot be hashed or read
// comes back as a row with its Error set.
func (previewer *Previewer) Run() ([]*PreviewRow, error) {
	previewer.WorkResult.Start()
	defer previewer.WorkResult.Finish()

	paths, err := ListImages(previewer.Folder)
	if err != nil {
		previewer.WorkResult.AddError(service.NewProcessingError(previewer.Folder, "setup", err.Error(), true))
		return nil, err
	}
	masts, err := previewer.Context.ArcGISClient.FetchMasts()
	if err != nil {
		previewer.WorkResult.AddError(service.NewProcessingError(previewer.Folder, "setup", err.Error(), true))
		return nil, err
	}
	previewer.masts = masts

	rows := make([]*PreviewRow, 0, len(paths))
	for _, pathToFile := range paths {
		rows = append(rows, previewer.previewFile(pathToFile))
	}
	return rows, nil
}

func (previewer *Previewer) previewFile(pathToFile string) *PreviewRow {
	record := service.NewImageRecord(pathToFile)
	row := &PreviewRow{FileName: record.FileName}

	fileHash, err := tracker.HashFile(pathToFile, previewer.Context.Config.HashAlgorithm)
	if err != nil {
		row.Error = err.Error()
		return row
	}
	row.AlreadyUploaded, err = previewer.Context.Tracker.HasBeenUploaded(fileHash)
	if err != nil {
		row.Error = err.Error()
		return row
	}

	point, err := imaging.ExtractGPS(pathToFile)
	if err != nil {
		var geoError *service.GeoExtractionError
		if !errors.As(err, &geoError) {
			row.Error = err.Error()
		}
		return row
	}
	record.SetPosition(point.Lat(), point.Lon())
	row.HasPosition = true
	row.Latitude = record.Latitude
	row.Longitude = record.Longitude
	row.Match = geomatch.FindNearest(record.Point(), previewer.masts, previewer.RadiusMeters)
	return row
}
