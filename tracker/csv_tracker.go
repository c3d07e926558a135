package tracker

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/moerenett/toppbefaring-services/util"
)

// CSVTracker keeps the upload log in a semicolon-separated file, the
// format earlier seasons of the survey used. The file is append-only:
// every outcome adds a row, rows are never rewritten, and dedup scans
// all rows recorded for a hash.
type CSVTracker struct {
	pathToFile string
	file       *os.File
	writer     *csv.Writer
	mutex      sync.Mutex
	rows       map[string][]*service.UploadLogEntry
}

// NewCSVTracker opens the log at pathToFile and loads its rows into
// memory, creating the file with a header row if it does not exist.
func NewCSVTracker(pathToFile string) (*CSVTracker, error) {
	tracker := &CSVTracker{
		pathToFile: pathToFile,
		rows:       make(map[string][]*service.UploadLogEntry),
	}
	if util.FileExists(pathToFile) {
		if err := tracker.load(); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(pathToFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, service.NewFileIOError("open", pathToFile, err)
	}
	tracker.file = file
	tracker.writer = csv.NewWriter(file)
	tracker.writer.Comma = ';'
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, service.NewFileIOError("stat", pathToFile, err)
	}
	if info.Size() == 0 {
		if err = tracker.writer.Write(service.UploadLogColumns); err != nil {
			file.Close()
			return nil, fmt.Errorf("Writing upload log header: %v", err)
		}
		tracker.writer.Flush()
		if err = tracker.writer.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("Writing upload log header: %v", err)
		}
	}
	return tracker, nil
}

func (t *CSVTracker) load() error {
	file, err := os.Open(t.pathToFile)
	if err != nil {
		return service.NewFileIOError("open", t.pathToFile, err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = len(service.UploadLogColumns)
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("Reading upload log %s: %v", t.pathToFile, err)
	}
	for i, row := range records {
		if i == 0 && row[0] == service.UploadLogColumns[0] {
			continue
		}
		entry, err := service.UploadLogEntryFromRow(row)
		if err != nil {
			return fmt.Errorf("Upload log %s row %d: %v", t.pathToFile, i+1, err)
		}
		t.rows[entry.FileHash] = append(t.rows[entry.FileHash], entry)
	}
	return nil
}

func (t *CSVTracker) HasBeenUploaded(fileHash string) (bool, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	for _, entry := range t.rows[fileHash] {
		if entry.WasUploaded() {
			return true, nil
		}
	}
	return false, nil
}

func (t *CSVTracker) Entry(fileHash string) (*service.UploadLogEntry, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	entries := t.rows[fileHash]
	if len(entries) == 0 {
		return nil, nil
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].WasUploaded() {
			return entries[i], nil
		}
	}
	return entries[len(entries)-1], nil
}

func (t *CSVTracker) Append(entry *service.UploadLogEntry) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := t.writer.Write(entry.ToRow()); err != nil {
		return fmt.Errorf("Writing upload log %s: %v", t.pathToFile, err)
	}
	t.writer.Flush()
	if err := t.writer.Error(); err != nil {
		return fmt.Errorf("Writing upload log %s: %v", t.pathToFile, err)
	}
	t.rows[entry.FileHash] = append(t.rows[entry.FileHash], entry)
	return nil
}

func (t *CSVTracker) Counts() (int, int, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	uploaded, failed := 0, 0
	for _, entries := range t.rows {
		hasOk, hasFailed := false, false
		for _, entry := range entries {
			if entry.WasUploaded() {
				hasOk = true
			} else if entry.Status == constants.StatusFailed {
				hasFailed = true
			}
		}
		if hasOk {
			uploaded++
		} else if hasFailed {
			failed++
		}
	}
	return uploaded, failed, nil
}

func (t *CSVTracker) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.writer.Flush()
	if err := t.writer.Error(); err != nil {
		t.file.Close()
		return err
	}
	return t.file.Close()
}
