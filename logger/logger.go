/*
Package logger configures the process-wide log: everything goes to the
console and is appended to segul.log in the working directory, so a
batch run leaves an audit trail next to its outputs.
*/
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LogFile is the append-only log written in the working directory.
const LogFile = "segul.log"

// Log is the shared logger. Packages log warnings through it; fatal
// errors are returned up to the CLI instead.
var Log = logrus.New()

// Setup points the logger at stderr plus the append-only log file. It
// returns a closer for the file. Failing to open the log file is not
// fatal; logging falls back to stderr alone.
func Setup() io.Closer {
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	handle, err := os.OpenFile(LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		Log.SetOutput(os.Stderr)
		Log.Warnf("cannot open %s: %v", LogFile, err)
		return io.NopCloser(nil)
	}
	Log.SetOutput(io.MultiWriter(os.Stderr, handle))
	return handle
}
