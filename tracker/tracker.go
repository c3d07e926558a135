// Package tracker persists the upload log that keeps photos from being
// uploaded twice, plus the run history behind the stats command.
package tracker

import (
	"github.com/moerenett/toppbefaring-services/models/service"
)

// UploadTracker is the upload log. A photo counts as uploaded only
// when the log holds an ok row for its content hash; failed and
// skipped rows leave it eligible for the next run.
type UploadTracker interface {
	// HasBeenUploaded says whether the log holds an ok row for
	// fileHash.
	HasBeenUploaded(fileHash string) (bool, error)

	// Entry returns the row that decides the hash's status: the
	// newest ok row when one exists, otherwise the newest row of any
	// status. Returns nil when the hash has never been seen.
	Entry(fileHash string) (*service.UploadLogEntry, error)

	// Append records an outcome. An ok row is never displaced by a
	// later skipped or failed row for the same hash.
	Append(entry *service.UploadLogEntry) error

	// Counts reports distinct hashes with an ok row, and distinct
	// hashes whose attempts have all failed.
	Counts() (uploaded, failed int, err error)

	Close() error
}
