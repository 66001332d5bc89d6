package main

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// setupLog routes logging to the file named by SLGTI_LOGFILE, or
// discards it. Logging to stderr would tear up the alt screen.
func setupLog() (func() error, error) {
	if logFile := os.Getenv("SLGTI_LOGFILE"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, err
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		log.SetTimeFormat(time.Kitchen)
		log.SetReportTimestamp(true)
		return f.Close, nil
	}
	log.SetOutput(io.Discard)
	return func() error { return nil }, nil
}
