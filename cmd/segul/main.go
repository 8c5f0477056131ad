// Command segul is an ultrafast, memory-efficient toolkit for working
// with phylogenomic datasets: alignment conversion, concatenation,
// splitting, filtering, per-sequence edits, translation, and summary
// statistics.
package main

import (
	"os"

	"github.com/hhandika/segul/logger"
)

func main() {
	closer := logger.Setup()
	defer closer.Close()
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		logger.Log.Error(err)
		os.Exit(exitCode(err))
	}
}
