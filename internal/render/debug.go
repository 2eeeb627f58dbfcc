package render

import (
	"io"
	"log"
)

var opsLogger = log.New(io.Discard, "[render] ", log.LstdFlags|log.Lmicroseconds)

// SetLogWriter directs render's operational log. Pass nil to discard.
func SetLogWriter(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	opsLogger.SetOutput(w)
}

func opsf(format string, args ...interface{}) {
	opsLogger.Printf(format, args...)
}
