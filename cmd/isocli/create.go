package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rstms/isokit/pkg/blockmedium"
	"github.com/rstms/isokit/pkg/iso9660"
)

var (
	createVolumeID    string
	createJoliet      bool
	createEnhanced    bool
	createRockRidge   bool
	createBlockSize   int
	createOptionalPTs bool
)

var createCmd = &cobra.Command{
	Use:   "create SOURCEDIR IMAGE",
	Short: "Build a fresh ISO 9660 image from the contents of SOURCEDIR",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceDir, imagePath := args[0], args[1]

		volumeID := createVolumeID
		if volumeID == "" {
			volumeID = "ISOCLI_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:24]
		}

		medium, err := blockmedium.CreateFileMedium(imagePath, 2048)
		if err != nil {
			return fmt.Errorf("create %s: %w", imagePath, err)
		}
		defer medium.Close()

		w, err := iso9660.NewWriter(medium, iso9660.WriterOptions{
			VolumeIdentifier:         volumeID,
			BlockSize:                createBlockSize,
			IncludeSupplementary:     createJoliet,
			IncludeEnhanced:          createEnhanced,
			EnableSUSP:               createRockRidge,
			CreateOptionalPathTables: createOptionalPTs,
			Logger:                   rootLogr(),
			Progress:                 printProgress,
		})
		if err != nil {
			return err
		}

		if err := ingestTree(w, sourceDir); err != nil {
			return err
		}

		return w.WriteAndClose(func(path string) (io.Reader, error) {
			return os.Open(filepath.Join(sourceDir, path))
		})
	},
}

func init() {
	createCmd.Flags().StringVar(&createVolumeID, "volume-id", "", "volume identifier (default: a generated ISOCLI_ id)")
	createCmd.Flags().BoolVar(&createJoliet, "joliet", true, "include a Joliet Supplementary Volume Descriptor")
	createCmd.Flags().BoolVar(&createEnhanced, "enhanced", false, "include an Enhanced (ISO 9660:1999) Volume Descriptor")
	createCmd.Flags().BoolVar(&createRockRidge, "rock-ridge", true, "attach Rock Ridge (SUSP) metadata to the Primary descriptor")
	createCmd.Flags().IntVar(&createBlockSize, "block-size", 2048, "logical block size, a power of two no greater than 2048")
	createCmd.Flags().BoolVar(&createOptionalPTs, "optional-path-tables", false, "also emit the optional L/M path table copies")
	rootCmd.AddCommand(createCmd)
}

// ingestTree walks sourceDir and mirrors it into w via AddDirectory/AddFile/
// AddSymlink, using paths relative to sourceDir as the image's paths.
func ingestTree(w *iso9660.Writer, sourceDir string) error {
	return filepath.WalkDir(sourceDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(sourceDir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		meta := &iso9660.NodeMetadata{Mode: info.Mode(), Modified: info.ModTime()}

		switch {
		case d.IsDir():
			return w.AddDirectory(rel, meta)
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return w.AddSymlink(rel, target, meta)
		default:
			return w.AddFile(rel, uint32(info.Size()), meta)
		}
	})
}
