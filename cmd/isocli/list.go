package main

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/rstms/isokit/pkg/blockmedium"
	"github.com/rstms/isokit/pkg/filesystem"
	"github.com/rstms/isokit/pkg/iso9660"
)

var listJoliet bool

var listCmd = &cobra.Command{
	Use:   "list IMAGE",
	Short: "Recursively list the contents of an ISO 9660 image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		medium, err := blockmedium.OpenFileMedium(args[0], 2048)
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer medium.Close()

		opts := []iso9660.Option{iso9660.WithLogger(rootLogr())}
		if listJoliet {
			opts = append(opts, iso9660.WithPreferJoliet(true))
		}
		r, err := iso9660.Open(medium, opts...)
		if err != nil {
			return err
		}
		defer r.Close()

		fmt.Printf("%s (%d blocks)\n", r.VolumeID(), r.VolumeSpaceSize())
		return walkAndPrint(r, "/")
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJoliet, "joliet", false, "prefer the Joliet descriptor when resolving names")
	rootCmd.AddCommand(listCmd)
}

func walkAndPrint(r *iso9660.Reader, dir string) error {
	entries, err := r.List(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		full := path.Join(dir, e.Name)
		switch e.Kind {
		case filesystem.KindDirectory:
			fmt.Printf("%s/\n", full)
			if err := walkAndPrint(r, full); err != nil {
				return err
			}
		case filesystem.KindSymlink:
			fmt.Printf("%s -> %s\n", full, e.Target)
		default:
			fmt.Printf("%s\t%d\n", full, e.Size)
		}
	}
	return nil
}
