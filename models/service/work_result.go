package service

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/moerenett/toppbefaring-services/constants"
)

// WorkResult collects the errors of one run of the uploader or the
// previewer. A run succeeds when it finishes with no errors at all;
// individual photos may still have failed and been recorded in the
// upload log.
type WorkResult struct {
	// Operation is the name of the operation: upload or preview.
	Operation string `json:"operation"`

	// Host is the name of the machine the run happened on.
	Host string `json:"host"`

	// Pid is the pid of the process that did the run.
	Pid int `json:"pid"`

	// StartedAt describes when the run started. If StartedAt.IsZero(),
	// the run has not started yet.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt describes when the run completed. Note that the run
	// may have completed without succeeding. Check the Succeeded()
	// method to see whether it did.
	FinishedAt time.Time `json:"finished_at"`

	// Errors is a list of ProcessingError objects describing things
	// that went wrong during the run. Don't write to this. It's
	// public so we can serialize it to/from JSON, but access is locked
	// internally with a mutex.
	Errors []*ProcessingError `json:"errors"`

	mutex *sync.RWMutex
}

func NewWorkResult(operation string) *WorkResult {
	hostname, _ := os.Hostname()
	return &WorkResult{
		Operation: operation,
		Host:      hostname,
		Pid:       os.Getpid(),
		Errors:    make([]*ProcessingError, 0),
		mutex:     &sync.RWMutex{},
	}
}

func (result *WorkResult) Start() {
	result.StartedAt = time.Now().UTC()
}

func (result *WorkResult) Started() bool {
	return !result.StartedAt.IsZero()
}

func (result *WorkResult) Finish() {
	result.FinishedAt = time.Now().UTC()
}

func (result *WorkResult) Finished() bool {
	return !result.FinishedAt.IsZero()
}

func (result *WorkResult) RunTime() time.Duration {
	startTime := result.StartedAt
	if startTime.IsZero() {
		return time.Duration(0)
	}
	endTime := result.FinishedAt
	if endTime.IsZero() {
		endTime = time.Now()
	}
	return endTime.Sub(startTime)
}

func (result *WorkResult) Succeeded() bool {
	result.mutex.RLock()
	succeeded := result.Finished() && len(result.Errors) == 0
	result.mutex.RUnlock()
	return succeeded
}

// AddError adds a ProcessingError to the result. The total number of
// non-fatal errors is capped because a dead network link makes every
// photo in a large folder fail the same way, and recording the message
// thirty times tells us as much as recording it five hundred times.
// Fatal errors are always added, and there is rarely more than one
// since the run stops on the first.
func (result *WorkResult) AddError(err *ProcessingError) {
	if len(result.Errors) >= constants.MaxNonFatalErrors && !err.IsFatal {
		return
	}
	result.mutex.Lock()
	result.Errors = append(result.Errors, err)
	result.mutex.Unlock()
}

// HasErrors returns true if this result has any errors,
// fatal or not.
func (result *WorkResult) HasErrors() bool {
	result.mutex.RLock()
	hasErrors := len(result.Errors) > 0
	result.mutex.RUnlock()
	return hasErrors
}

// FatalErrors returns a list of all of this result's fatal errors.
func (result *WorkResult) FatalErrors() (errors []*ProcessingError) {
	result.mutex.RLock()
	for _, err := range result.Errors {
		if err.IsFatal {
			errors = append(errors, err)
		}
	}
	result.mutex.RUnlock()
	return errors
}

// HasFatalErrors returns true if this result has any fatal errors.
func (result *WorkResult) HasFatalErrors() bool {
	return len(result.FatalErrors()) > 0
}

// FatalErrorMessage returns all fatal error messages as a single
// pipe-delimited string.
func (result *WorkResult) FatalErrorMessage() string {
	errors := result.FatalErrors()
	messages := make([]string, len(errors))
	for i, err := range errors {
		messages[i] = err.Message
	}
	return strings.Join(messages[:], " | ")
}

// WorkResultFromJSON converts the JSON representation of a WorkResult
// into a full-fledged object. Note that this involves not only deserializing
// the JSON, but also initializing an internal mutex. If you deserialize
// without this function, you'll eventually run into nil pointer exceptions
// because the mutex won't exist.
func WorkResultFromJSON(jsonData string) (*WorkResult, error) {
	result := &WorkResult{}
	err := json.Unmarshal([]byte(jsonData), result)
	if err != nil {
		return nil, err
	}
	result.mutex = &sync.RWMutex{}
	return result, nil
}

func (result *WorkResult) ToJSON() (string, error) {
	bytes, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
