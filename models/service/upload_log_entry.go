package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/moerenett/toppbefaring-services/constants"
)

// UploadLogColumns is the header of the upload log, in column order.
// ToRow and UploadLogEntryFromRow must agree with it.
var UploadLogColumns = []string{
	"filename",
	"location",
	"objektnummer",
	"linje_navn",
	"linje_id",
	"driftsmerking",
	"er_historisk",
	"kilde",
	"anleggstype",
	"filehash",
	"avstand",
	"uploadtime",
	"updatetime",
	"status",
}

// UploadLogEntry is one row of the upload log. String fields mirror
// the file format: empty means the value was unknown when the row was
// written. Only rows with status ok count as uploaded for dedup
// purposes; failed rows are retried on the next run.
type UploadLogEntry struct {
	Filename      string    `json:"filename"`
	Location      string    `json:"location"`
	Objektnummer  string    `json:"objektnummer"`
	LinjeNavn     string    `json:"linje_navn"`
	LinjeID       string    `json:"linje_id"`
	Driftsmerking string    `json:"driftsmerking"`
	ErHistorisk   string    `json:"er_historisk"`
	Kilde         string    `json:"kilde"`
	Anleggstype   string    `json:"anleggstype"`
	FileHash      string    `json:"filehash"`
	Avstand       string    `json:"avstand"`
	UploadTime    time.Time `json:"uploadtime"`
	UpdateTime    time.Time `json:"updatetime"`
	Status        string    `json:"status"`
}

// NewUploadLogEntry returns an entry stamped with the current time in
// both time columns.
func NewUploadLogEntry(filename, fileHash, status string) *UploadLogEntry {
	now := time.Now()
	return &UploadLogEntry{
		Filename:    filename,
		ErHistorisk: "false",
		Anleggstype: constants.AnleggstypeMast,
		FileHash:    fileHash,
		UploadTime:  now,
		UpdateTime:  now,
		Status:      status,
	}
}

// SetLocation records the photo position the entry was written with.
func (entry *UploadLogEntry) SetLocation(latitude, longitude float64) {
	entry.Location = fmt.Sprintf("%.6f,%.6f", latitude, longitude)
}

// SetDistance records the meters between photo and matched mast.
func (entry *UploadLogEntry) SetDistance(meters float64) {
	entry.Avstand = fmt.Sprintf("%.2f", meters)
}

// ToRow returns the entry as a slice of strings in UploadLogColumns
// order.
func (entry *UploadLogEntry) ToRow() []string {
	return []string{
		entry.Filename,
		entry.Location,
		entry.Objektnummer,
		entry.LinjeNavn,
		entry.LinjeID,
		entry.Driftsmerking,
		entry.ErHistorisk,
		entry.Kilde,
		entry.Anleggstype,
		entry.FileHash,
		entry.Avstand,
		formatLogTime(entry.UploadTime),
		formatLogTime(entry.UpdateTime),
		entry.Status,
	}
}

// UploadLogEntryFromRow parses a row in UploadLogColumns order back
// into an entry. Timestamps that do not parse come back as zero times
// rather than errors, because old logs contain hand-edited rows.
func UploadLogEntryFromRow(row []string) (*UploadLogEntry, error) {
	if len(row) != len(UploadLogColumns) {
		return nil, fmt.Errorf("Row has %d columns, log has %d", len(row), len(UploadLogColumns))
	}
	return &UploadLogEntry{
		Filename:      row[0],
		Location:      row[1],
		Objektnummer:  row[2],
		LinjeNavn:     row[3],
		LinjeID:       row[4],
		Driftsmerking: row[5],
		ErHistorisk:   row[6],
		Kilde:         row[7],
		Anleggstype:   row[8],
		FileHash:      row[9],
		Avstand:       row[10],
		UploadTime:    parseLogTime(row[11]),
		UpdateTime:    parseLogTime(row[12]),
		Status:        row[13],
	}, nil
}

func UploadLogEntryFromJSON(jsonData string) (*UploadLogEntry, error) {
	entry := &UploadLogEntry{}
	err := json.Unmarshal([]byte(jsonData), entry)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (entry *UploadLogEntry) ToJSON() (string, error) {
	bytes, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WasUploaded returns true if this entry records a completed upload.
// Skipped and failed rows do not count.
func (entry *UploadLogEntry) WasUploaded() bool {
	return entry.Status == constants.StatusOk
}

func formatLogTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(constants.TimestampLayout)
}

func parseLogTime(value string) time.Time {
	t, err := time.Parse(constants.TimestampLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
