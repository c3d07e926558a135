package ingest

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/geomatch"
	"github.com/moerenett/toppbefaring-services/imaging"
	"github.com/moerenett/toppbefaring-services/models/common"
	"github.com/moerenett/toppbefaring-services/models/gis"
	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/moerenett/toppbefaring-services/tracker"
)

// Uploader runs one batch: it walks a folder of survey photos and
// takes each one through hashing, position extraction, mast matching,
// optional resizing, the duplicate check, and finally the upload. A
// photo that fails is recorded in the upload log with status failed
// and the batch moves on to the next photo. The only errors that stop
// the batch are the ones that happen before it starts, like an
// unreadable folder or rejected service credentials.
type Uploader struct {
	Context *common.Context

	// Folder is the directory being uploaded. Subdirectories are
	// ignored.
	Folder string

	// RadiusMeters is how far from a photo's position a mast may be
	// and still count as a match. Defaults to the configured radius.
	RadiusMeters float64

	// RemoteCheck makes the duplicate check ask the document service
	// whether it already holds the photo's hash, in addition to the
	// local upload log. Use it when the log was lost or when another
	// machine uploads from the same folders.
	RemoteCheck bool

	// ResizeOpts turns on downscaling before upload. Nil means upload
	// the originals as they are.
	ResizeOpts *imaging.ResizeOptions

	// RunID identifies this run in the logs and the stats database.
	RunID string

	// WorkResult collects the run's errors.
	WorkResult *service.WorkResult

	masts   []*gis.MastRecord
	records []*service.ImageRecord
}

func NewUploader(context *common.Context, folder string) *Uploader {
	return &Uploader{
		Context:      context,
		Folder:       folder,
		RadiusMeters: context.Config.MatchRadiusMeters,
		RunID:        uuid.New().String(),
		WorkResult:   service.NewWorkResult(constants.OperationUpload),
	}
}

// Run processes every photo in the folder and returns the run
// summary. The error is non-nil only when the batch could not run at
// all; per-photo failures show up in the summary counts, the work
// result, and the upload log.
func (uploader *Uploader) Run() (*service.RunRecord, error) {
	uploader.WorkResult.Start()
	run := &service.RunRecord{
		ID:        uploader.RunID,
		Folder:    uploader.Folder,
		Operation: constants.OperationUpload,
		StartedAt: uploader.WorkResult.StartedAt,
	}
	paths, err := ListImages(uploader.Folder)
	if err != nil {
		return run, uploader.fatal(run, err)
	}
	masts, err := uploader.Context.ArcGISClient.FetchMasts()
	if err != nil {
		return run, uploader.fatal(run, err)
	}
	uploader.masts = masts
	uploader.Context.Logger.Infof("Run %s: %d photos in %s, %d masts in the layer",
		uploader.RunID, len(paths), uploader.Folder, len(masts))

	for _, pathToFile := range paths {
		record := uploader.ProcessFile(pathToFile)
		uploader.records = append(uploader.records, record)
		run.Scanned++
		switch record.Stage {
		case constants.StageUploaded:
			run.Uploaded++
		case constants.StageFailed:
			run.Failed++
		default:
			run.Skipped++
		}
	}

	uploader.WorkResult.Finish()
	run.FinishedAt = uploader.WorkResult.FinishedAt
	uploader.saveRun(run)
	uploader.Context.Logger.Infof("Run %s finished in %s: %d scanned, %d uploaded, %d skipped, %d failed",
		run.ID, uploader.WorkResult.RunTime(), run.Scanned, run.Uploaded, run.Skipped, run.Failed)
	return run, nil
}

// ProcessFile takes one photo through the pipeline and returns its
// record. It never returns an error: whatever goes wrong is recorded
// on the record and in the upload log, and the caller moves on.
func (uploader *Uploader) ProcessFile(pathToFile string) *service.ImageRecord {
	record := service.NewImageRecord(pathToFile)
	record.HashAlgorithm = uploader.Context.Config.HashAlgorithm

	// The hash comes from the original bytes before any resizing can
	// touch them, or a run with Overwrite set would change every
	// photo's identity.
	fileHash, err := tracker.HashFile(pathToFile, record.HashAlgorithm)
	if err != nil {
		return uploader.fail(record, nil, "hash", err)
	}
	record.ContentHash = fileHash

	var mast *gis.MastRecord
	point, err := imaging.ExtractGPS(pathToFile)
	if err != nil {
		var geoError *service.GeoExtractionError
		if !errors.As(err, &geoError) {
			return uploader.fail(record, nil, "extract", err)
		}
		uploader.unmatched(record, err.Error())
	} else {
		record.SetPosition(point.Lat(), point.Lon())
		record.Stage = constants.StageGeoExtracted
		match := geomatch.FindNearest(record.Point(), uploader.masts, uploader.RadiusMeters)
		if match == nil {
			uploader.unmatched(record,
				fmt.Sprintf("No mast within %.0f meters of %.6f,%.6f",
					uploader.RadiusMeters, record.Latitude, record.Longitude))
		} else {
			mast = match.Mast
			record.SetMatch(mast.ID, mast.Driftsmerking(), match.Distance)
			uploader.Context.Logger.Infof("%s matched %s at %.2f meters",
				record.FileName, record.Driftsmerking, match.Distance)
		}
	}

	if uploader.ResizeOpts != nil {
		result, err := imaging.Resize(pathToFile, *uploader.ResizeOpts)
		if err != nil {
			return uploader.fail(record, mast, "resize", err)
		}
		record.UploadPath = result.Path
		record.Resized = result.Resized
		if result.Resized {
			record.Stage = constants.StageResized
			uploader.Context.Logger.Infof("Resized %s from %dx%d to %dx%d",
				record.FileName, result.OriginalWidth, result.OriginalHeight,
				result.Width, result.Height)
		}
	}

	alreadyUploaded, err := uploader.Context.Tracker.HasBeenUploaded(fileHash)
	if err != nil {
		return uploader.fail(record, mast, "dedup", err)
	}
	if alreadyUploaded {
		record.Stage = constants.StageSkipped
		uploader.Context.Logger.Infof("Skipping %s: already in the upload log", record.FileName)
		uploader.appendLog(uploader.logEntryFor(record, mast, constants.StatusSkipped))
		return record
	}
	if uploader.RemoteCheck {
		documentIDs, err := uploader.Context.ImageGridClient.SearchByHash(fileHash)
		if err != nil {
			return uploader.fail(record, mast, "dedup", err)
		}
		if len(documentIDs) > 0 {
			record.DocumentID = documentIDs[0]
			record.Stage = constants.StageSkipped
			uploader.Context.Logger.Infof("Skipping %s: document service already holds it as %s",
				record.FileName, record.DocumentID)
			// The hash was missing from the local log, or we would
			// have skipped above. Record it as uploaded so the next
			// run skips without the remote round trip.
			uploader.appendLog(uploader.logEntryFor(record, mast, constants.StatusOk))
			return record
		}
	}
	record.Stage = constants.StageDedupChecked

	documentID, err := uploader.Context.ImageGridClient.Upload(record.UploadPath, record.FileName)
	if err != nil {
		return uploader.fail(record, mast, "upload", err)
	}
	record.DocumentID = documentID

	err = uploader.Context.ImageGridClient.RunSchemaTasks(documentID, uploader.attributesFor(record, mast))
	if err != nil {
		return uploader.fail(record, mast, "attach", err)
	}

	record.Stage = constants.StageUploaded
	uploader.appendLog(uploader.logEntryFor(record, mast, constants.StatusOk))
	uploader.Context.Logger.Infof("Uploaded %s as document %s", record.FileName, documentID)
	return record
}

// Records returns the per-photo records of the run, in processing
// order.
func (uploader *Uploader) Records() []*service.ImageRecord {
	return uploader.records
}

// fail puts the record in its failed terminal stage, notes the error,
// and writes a failed row so the photo is retried on the next run.
// mast is nil when the photo failed before matching.
func (uploader *Uploader) fail(record *service.ImageRecord, mast *gis.MastRecord, stage string, err error) *service.ImageRecord {
	record.MarkFailed(err)
	uploader.WorkResult.AddError(service.NewProcessingError(record.FileName, stage, err.Error(), false))
	uploader.Context.Logger.Errorf("%s failed at %s: %s", record.FileName, stage, errorDetail(err))
	uploader.appendLog(uploader.logEntryFor(record, mast, constants.StatusFailed))
	return record
}

// unmatched notes a photo that has no mast to be linked to, either
// because it carries no usable position or because nothing in the
// layer is close enough. Not an error, and not the end of the photo:
// it still gets uploaded, its document just carries no mast
// attributes and its log row no mast columns.
func (uploader *Uploader) unmatched(record *service.ImageRecord, reason string) {
	record.Stage = constants.StageUnmatched
	uploader.Context.Logger.Infof("No match for %s: %s", record.FileName, reason)
}

// appendLog writes one row to the upload log. A failed write does not
// change the photo's outcome, but it does go in the work result,
// because a log that is missing rows will re-upload photos on the
// next run.
func (uploader *Uploader) appendLog(entry *service.UploadLogEntry) {
	err := uploader.Context.Tracker.Append(entry)
	if err != nil {
		uploader.Context.Logger.Errorf("Could not record %s in the upload log: %v", entry.Filename, err)
		uploader.WorkResult.AddError(service.NewProcessingError(entry.Filename, "log", err.Error(), false))
	}
}

// logEntryFor builds the upload log row for a photo. mast may be nil
// for photos that never matched; their rows carry only the filename,
// hash, position when known, and status.
func (uploader *Uploader) logEntryFor(record *service.ImageRecord, mast *gis.MastRecord, status string) *service.UploadLogEntry {
	entry := service.NewUploadLogEntry(record.FileName, record.ContentHash, status)
	entry.Kilde = uploader.Context.Config.Kilde
	if record.HasPosition {
		entry.SetLocation(record.Latitude, record.Longitude)
	}
	if mast != nil {
		entry.Driftsmerking = mast.Driftsmerking()
		entry.Objektnummer = mast.StringField("MASTENUMMER")
		entry.LinjeNavn = mast.StringField("LINJENUMMER")
		entry.LinjeID = mast.StringField("ID")
		entry.SetDistance(record.DistanceMeters)
	}
	return entry
}

// attributesFor builds the attribute set the document service indexes
// the photo under: the photo's own identity and position, plus the
// translated mast attributes when a mast matched.
func (uploader *Uploader) attributesFor(record *service.ImageRecord, mast *gis.MastRecord) map[string]interface{} {
	attributes := map[string]interface{}{}
	if mast != nil {
		attributes = mast.Attributes()
		attributes["avstand"] = record.DistanceMeters
	}
	attributes["Name"] = record.FileName
	attributes["kilde"] = uploader.Context.Config.Kilde
	attributes["anleggstype"] = constants.AnleggstypeMast
	attributes["anleggstype_n"] = constants.AnleggstypeMastName
	attributes["er_historisk"] = false
	attributes["filehash"] = record.ContentHash
	if record.HasPosition {
		attributes["latitude"] = record.Latitude
		attributes["longitude"] = record.Longitude
		attributes["Location"] = map[string]interface{}{
			"type":        "Point",
			"coordinates": []float64{record.Longitude, record.Latitude},
		}
	}
	return attributes
}

// saveRun records the run in the stats database, when one is
// configured. Stats are bookkeeping; a failure here never fails the
// run.
func (uploader *Uploader) saveRun(run *service.RunRecord) {
	if uploader.Context.RunStore == nil {
		return
	}
	err := uploader.Context.RunStore.SaveRun(run)
	if err != nil {
		uploader.Context.Logger.Errorf("Could not save run %s to the stats database: %v", run.ID, err)
	}
}

// fatal records a setup failure that kept the batch from running and
// closes out the work result and run record.
func (uploader *Uploader) fatal(run *service.RunRecord, err error) error {
	uploader.WorkResult.AddError(service.NewProcessingError(uploader.RunID, "setup", err.Error(), true))
	uploader.WorkResult.Finish()
	run.FinishedAt = uploader.WorkResult.FinishedAt
	uploader.Context.Logger.Errorf("Run %s did not start: %s", uploader.RunID, errorDetail(err))
	return err
}

// errorDetail prefers the long form of the service errors, which
// carries the underlying cause, over the short Error() string.
func errorDetail(err error) string {
	var detailed service.DetailedError
	if errors.As(err, &detailed) {
		return detailed.Detail()
	}
	return err.Error()
}
