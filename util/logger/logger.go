package logger

import (
	"fmt"
	stdlog "log"
	"os"
	"path"
	"path/filepath"

	"github.com/op/go-logging"
)

/*
InitLogger creates and returns a logger suitable for logging
human-readable messages. Also returns the path to the log file.

Everything at logLevel and above goes to the log file. Warnings and
errors are copied to stderr as well, because the uploader is run by a
person at a terminal who should not have to tail the log to notice
that photos are failing.
*/
func InitLogger(logDir string, logLevel logging.Level) (*logging.Logger, string) {
	processName := path.Base(os.Args[0])
	filename := fmt.Sprintf("%s.log", processName)
	filename = filepath.Join(logDir, filename)
	writer, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open log file '%s': %v\n", filename, err)
		os.Exit(1)
	}
	log := logging.MustGetLogger(processName)
	format := logging.MustStringFormatter("[%{level}] %{message}")
	logging.SetFormatter(format)

	fileBackend := logging.NewLogBackend(writer, "", stdlog.LstdFlags|stdlog.LUTC)
	stderrBackend := logging.AddModuleLevel(logging.NewLogBackend(os.Stderr, "", 0))
	stderrBackend.SetLevel(logging.WARNING, "")

	leveled := logging.SetBackend(fileBackend, stderrBackend)
	leveled.SetLevel(logLevel, "")
	return log, filename
}
