package testutil

import (
	"fmt"
	"time"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/models/gis"
	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/paulmach/orb"
)

var RunStarted, _ = time.Parse(time.RFC3339, "2025-05-04T17:00:58Z")
var EmptyMd5 = "00000000000000000000000000000000"

const (
	TestKilde  = "toppbefaring test"
	TestSchema = "Toppbefaring"
	TestTenant = "moerenett"
)

// GetMastRecord returns a mast at the given position with a realistic
// attribute set. Param id doubles as the mast number, so fixtures read
// like the layer: mast 131 is LL040_131.
func GetMastRecord(id int64, lon, lat float64) *gis.MastRecord {
	fields := map[string]interface{}{
		"ID":            float64(id),
		"OID":           float64(4000 + id),
		"DRIFTSMERKING": fmt.Sprintf("LL040_%d", id),
		"LINJENUMMER":   "LL040",
		"MASTENUMMER":   float64(id),
		"KOMMUNE":       "Volda",
		"SPENNING":      float64(22),
		"BYGGEAAR":      float64(1987),
		"MASTETYPE":     "Enkel",
		"MATERIAL":      "Tre",
		"EIER":          "Mørenett",
		"ANMERKNING":    nil,
	}
	return gis.NewMastRecord(id, orb.Point{lon, lat}, fields)
}

func GetUploadLogEntry(hash, status string) *service.UploadLogEntry {
	entry := service.NewUploadLogEntry("IMG_0001.jpg", hash, status)
	entry.Kilde = TestKilde
	entry.Driftsmerking = "LL040_131"
	entry.SetLocation(62.172794, 5.747185)
	entry.SetDistance(42.37)
	entry.UploadTime = RunStarted
	entry.UpdateTime = RunStarted
	return entry
}

func GetImageRecord() *service.ImageRecord {
	record := service.NewImageRecord("/photos/2025-05/IMG_0001.jpg")
	record.ContentHash = "9a0364b9e99bb480dd25e1f0284c8555"
	record.HashAlgorithm = constants.AlgMd5
	record.SetPosition(62.172794, 5.747185)
	return record
}

func GetRunRecord() *service.RunRecord {
	return &service.RunRecord{
		ID:         "0a6a4a62-22c6-47f3-b6a5-57ec53ba4067",
		Folder:     "/photos/2025-05",
		Operation:  constants.OperationUpload,
		Scanned:    10,
		Uploaded:   7,
		Skipped:    2,
		Failed:     1,
		StartedAt:  RunStarted,
		FinishedAt: RunStarted.Add(3 * time.Minute),
	}
}
