package iso9660

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rstms/isokit/pkg/directory"
	"github.com/rstms/isokit/pkg/filesystem"
)

const extractBufferSize = 4096

// Extract recursively writes every file and directory under path (the
// volume root if empty) into destDir, invoking the configured
// ProgressCallback once per chunk copied.
func (r *Reader) Extract(path, destDir string) error {
	root, err := r.resolveEntry(path)
	if err != nil {
		return err
	}
	if !root.IsDir() {
		return fmt.Errorf("iso9660: %q is not a directory", path)
	}

	var files []walkedFile
	if err := r.walkDirectory(root.Metadata.Record, "", &files); err != nil {
		return err
	}

	total := len(files)
	for i, wf := range files {
		outPath := filepath.Join(destDir, wf.relPath)
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("iso9660: create parent directories for %s: %w", outPath, err)
		}
		if err := r.extractOne(wf, outPath, i+1, total); err != nil {
			return err
		}
	}
	return nil
}

type walkedFile struct {
	relPath string
	record  *directory.Record
}

// walkDirectory recurses into every subdirectory of rec, appending a
// walkedFile for every non-directory, non-symlink entry found.
func (r *Reader) walkDirectory(rec *directory.Record, prefix string, out *[]walkedFile) error {
	entries, err := filesystem.ReadDirectory(r.bio, r.resolved, rec)
	if err != nil {
		return err
	}
	for _, e := range entries {
		switch e.Kind {
		case filesystem.KindCurrentDirectory, filesystem.KindParentDirectory:
			continue
		case filesystem.KindDirectory:
			childPath := filepath.Join(prefix, r.entryName(e))
			if err := r.walkDirectory(e.Metadata.Record, childPath, out); err != nil {
				return err
			}
		case filesystem.KindFile:
			*out = append(*out, walkedFile{relPath: filepath.Join(prefix, r.entryName(e)), record: e.Metadata.Record})
		case filesystem.KindSymlink:
			// Symlink recreation is a non-goal; skipped on extraction.
		}
	}
	return nil
}

func (r *Reader) extractOne(wf walkedFile, outPath string, index, total int) error {
	reader := filesystem.NewFileReader(r.bio, wf.record.ExtentLBA, wf.record.DataLength)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("iso9660: create %s: %w", outPath, err)
	}
	defer out.Close()

	buf := make([]byte, extractBufferSize)
	var transferred int64
	total64 := int64(wf.record.DataLength)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("iso9660: write %s: %w", outPath, werr)
			}
			transferred += int64(n)
			if r.opts.Progress != nil {
				r.opts.Progress(wf.relPath, transferred, total64, index, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("iso9660: read %s from image: %w", wf.relPath, err)
		}
	}
	return nil
}
