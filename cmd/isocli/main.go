// Command isocli is a small front end over the isokit library: list,
// extract, and create ISO 9660 images from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/rstms/isokit/pkg/logging"
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:           "isocli",
	Short:         "Inspect, extract, and build ISO 9660 images",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v debug, -vv trace)")
}

// rootLogr builds the logr.Logger every subcommand threads into Open/NewWriter,
// using the teacher's colorized SimpleLogSink when -v was given at all.
func rootLogr() logr.Logger {
	if verbosity == 0 {
		return logr.Discard()
	}
	return logr.New(logging.NewSimpleLogSink(os.Stderr, verbosity))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "isocli:", err)
		os.Exit(1)
	}
}
