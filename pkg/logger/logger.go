package logger

import (
	"log"

	"go.uber.org/zap"
)

// Log is the process-wide structured logger.
var Log *zap.Logger

// Init builds the zap logger. Debug mode gets the human-readable
// development encoder, everything else JSON.
func Init(debug bool) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	Log = l
}

// Sync flushes buffered log entries; call on shutdown.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
