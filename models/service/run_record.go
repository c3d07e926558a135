package service

import (
	"encoding/json"
	"time"
)

// RunRecord summarizes one run for the stats store: how many photos
// the scanner found and how each one ended. Scanned is always the sum
// of the other three counts once the run finishes.
type RunRecord struct {
	ID         string    `json:"id"`
	Folder     string    `json:"folder"`
	Operation  string    `json:"operation"`
	Scanned    int       `json:"scanned"`
	Uploaded   int       `json:"uploaded"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func RunRecordFromJSON(jsonData string) (*RunRecord, error) {
	record := &RunRecord{}
	err := json.Unmarshal([]byte(jsonData), record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (record *RunRecord) ToJSON() (string, error) {
	bytes, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (record *RunRecord) RunTime() time.Duration {
	if record.StartedAt.IsZero() {
		return time.Duration(0)
	}
	end := record.FinishedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(record.StartedAt)
}
