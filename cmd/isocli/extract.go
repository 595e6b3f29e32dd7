package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rstms/isokit/pkg/blockmedium"
	"github.com/rstms/isokit/pkg/iso9660"
)

var extractCmd = &cobra.Command{
	Use:   "extract IMAGE DESTDIR",
	Short: "Extract every file from an ISO 9660 image into DESTDIR",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		medium, err := blockmedium.OpenFileMedium(args[0], 2048)
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer medium.Close()

		r, err := iso9660.Open(medium,
			iso9660.WithLogger(rootLogr()),
			iso9660.WithProgress(printProgress),
		)
		if err != nil {
			return err
		}
		defer r.Close()

		return r.Extract("/", args[1])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func printProgress(name string, transferred, total int64, fileIndex, fileCount int) {
	if transferred == total {
		fmt.Printf("[%d/%d] %s (%d bytes)\n", fileIndex, fileCount, name, total)
	}
}
