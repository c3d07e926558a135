package constants

const (
	AlgMd5                   = "md5"
	AlgSha1                  = "sha1"
	AlgSha256                = "sha256"
	AnleggstypeMast          = "MS"
	AnleggstypeMastName      = "Mast/stolpe"
	DefaultHashAlgorithm     = AlgMd5
	DefaultJpegQuality       = 85
	DefaultMatchRadiusMeters = 50.0
	MaxNonFatalErrors        = 30
	OperationPreview         = "preview"
	OperationUpload          = "upload"
	RedisTrackerKey          = "toppbefaring:uploads"
	ResizedFileSuffix        = "_resized"
	StatusFailed             = "failed"
	StatusOk                 = "ok"
	StatusSkipped            = "skipped"
	TimestampLayout          = "2006-01-02 15:04:05"
	TokenLifetimeMinutes     = 60
	TokenRefreshAfterMinutes = 50
	TrackerBackendCSV        = "csv"
	TrackerBackendRedis      = "redis"
)

// DigestAlgorithms lists the content hash algorithms the upload log
// accepts. The default is md5 because the legacy logs were built with
// it; switching algorithms invalidates dedup against old entries.
var DigestAlgorithms []string = []string{
	AlgMd5,
	AlgSha1,
	AlgSha256,
}

// ImageExtensions lists the file extensions the folder scanner treats
// as photos, lower case with leading dot.
var ImageExtensions []string = []string{
	".jpg",
	".jpeg",
	".png",
	".gif",
	".bmp",
}

// TrackerBackends lists the valid values for config setting
// TRACKER_BACKEND.
var TrackerBackends []string = []string{
	TrackerBackendCSV,
	TrackerBackendRedis,
}

// Statuses lists the valid values for the status column of the upload
// log.
var Statuses []string = []string{
	StatusOk,
	StatusSkipped,
	StatusFailed,
}
