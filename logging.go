package playback

import (
	"log"
	"os"
)

// logger is the package's stderr logger, matching the teacher's own
// "[willow] ..." prefix convention (debug.go, atlas.go) rather than pulling
// in a structured logging library the teacher never used.
var logger = log.New(os.Stderr, "[playback] ", log.LstdFlags)

// SetLogOutput is primarily for tests that want to capture log output.
func SetLogOutput(l *log.Logger) {
	if l != nil {
		logger = l
	}
}
