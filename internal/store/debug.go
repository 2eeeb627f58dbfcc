package store

import (
	"io"
	"log"
)

var opsLogger *log.Logger

// SetLogWriter configures the store's operational log. Pass nil to disable.
func SetLogWriter(w io.Writer) {
	if w == nil {
		opsLogger = nil
		return
	}
	opsLogger = log.New(w, "[store] ", log.LstdFlags|log.Lmicroseconds)
}

func opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}
