package service

import (
	"fmt"
	"runtime"
)

// DetailedError is implemented by errors that can say more about
// themselves than Error() does. The extra detail goes to the log, not
// to the user.
type DetailedError interface {
	Detail() string
}

// AuthError means a service token could not be obtained, or was still
// rejected after the single refresh-and-retry the clients perform.
// Before the batch starts this is fatal to the run. Mid-batch it fails
// only the photo being processed.
type AuthError struct {
	Err     error
	Message string
	Service string
}

func NewAuthError(serviceName, message string, err error) *AuthError {
	return &AuthError{
		Err:     err,
		Message: message,
		Service: serviceName,
	}
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) Detail() string {
	underlyingError := ""
	if e.Err != nil {
		underlyingError = fmt.Sprintf(" (Underlying error: %s)", e.Err.Error())
	}
	return fmt.Sprintf("Authentication against %s failed: %s%s",
		e.Service, e.Message, underlyingError)
}

// ServiceError describes a failed call to a remote service. These are
// logged per photo and never halt the batch.
type ServiceError struct {
	Err        error
	Message    string
	Method     string
	StatusCode int
	URL        string
}

func NewServiceError(method, url string, statusCode int, message string, err error) *ServiceError {
	return &ServiceError{
		Err:        err,
		Message:    message,
		Method:     method,
		StatusCode: statusCode,
		URL:        url,
	}
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Detail() string {
	underlyingError := ""
	if e.Err != nil {
		underlyingError = fmt.Sprintf(" (Underlying error: %s)", e.Err.Error())
	}
	return fmt.Sprintf("%s %s returned status %d. Message: %s%s",
		e.Method, e.URL, e.StatusCode, e.Message, underlyingError)
}

// GeoExtractionError means a photo carries no usable GPS position,
// either because it has no Exif block or because the block lacks the
// GPS tags. The photo is treated as unmatched, never as failed.
type GeoExtractionError struct {
	Err        error
	PathToFile string
}

func NewGeoExtractionError(pathToFile string, err error) *GeoExtractionError {
	return &GeoExtractionError{
		Err:        err,
		PathToFile: pathToFile,
	}
}

func (e *GeoExtractionError) Error() string {
	return fmt.Sprintf("Cannot read GPS position from %s", e.PathToFile)
}

func (e *GeoExtractionError) Unwrap() error {
	return e.Err
}

func (e *GeoExtractionError) Detail() string {
	underlyingError := ""
	if e.Err != nil {
		underlyingError = fmt.Sprintf(" (Underlying error: %s)", e.Err.Error())
	}
	return e.Error() + underlyingError
}

// FileIOError describes a local file we could not read, decode or
// write. The photo it belongs to is marked failed; the batch goes on.
type FileIOError struct {
	Err        error
	Operation  string
	PathToFile string
}

func NewFileIOError(operation, pathToFile string, err error) *FileIOError {
	return &FileIOError{
		Err:        err,
		Operation:  operation,
		PathToFile: pathToFile,
	}
}

func (e *FileIOError) Error() string {
	return fmt.Sprintf("Cannot %s %s", e.Operation, e.PathToFile)
}

func (e *FileIOError) Unwrap() error {
	return e.Err
}

func (e *FileIOError) Detail() string {
	underlyingError := ""
	if e.Err != nil {
		underlyingError = fmt.Sprintf(" (Underlying error: %s)", e.Err.Error())
	}
	return e.Error() + underlyingError
}

// ProcessingError records one thing that went wrong during a run, for
// the run's WorkResult. Param stage names the pipeline stage the photo
// was in when the error occurred.
type ProcessingError struct {
	Identifier string
	IsFatal    bool
	Message    string
	Source     string
	Stage      string
}

// NewProcessingError returns a new ProcessingError. Param identifier
// is the file name of the photo being processed when the error
// occurred, or the folder path for errors that precede the batch.
// Param isFatal describes whether the error stops the run. Per-photo
// errors are never fatal; failures to reach the mast layer or to read
// the scan folder before the batch begins are.
func NewProcessingError(identifier, stage, message string, isFatal bool) *ProcessingError {
	_, filename, line, ok := runtime.Caller(1)
	source := "unknown:0"
	if ok {
		source = fmt.Sprintf("%s:%d", filename, line)
	}
	return &ProcessingError{
		Identifier: identifier,
		IsFatal:    isFatal,
		Message:    message,
		Source:     source,
		Stage:      stage,
	}
}

func (e *ProcessingError) Error() string {
	severity := "non-fatal"
	if e.IsFatal {
		severity = "fatal"
	}
	source := "unknown:0"
	if e.Source != "" {
		source = e.Source
	}
	return fmt.Sprintf("(stage: %s) (message: %s) (severity: %s) "+
		"(identifier: %s) (source: %s)", e.Stage, e.Message,
		severity, e.Identifier, source)
}
