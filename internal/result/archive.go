package result

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/dsnet/compress/bzip2"
)

// Archive bundles every file in dir into dir/results.bz2 (a bzip2-compressed
// tar rooted at the directory's base name) and then removes the bundled
// files, keeping only the summary document and the archive. It reports
// whether anything was archived; a directory holding nothing but the summary
// is left alone.
//
// An existing archive is carried over into the new one; entries for files
// being archived again are replaced. The archive is fully written and
// renamed into place before any file is removed, so a failure never loses
// data.
func Archive(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("listing %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.Name() == SummaryFile || e.Name() == ArchiveFile || !e.Type().IsRegular() {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) == 0 {
		return false, nil
	}
	sort.Strings(files)

	tmp, err := os.CreateTemp(filepath.Dir(filepath.Clean(dir)), ".results-*.bz2")
	if err != nil {
		return false, fmt.Errorf("creating archive: %w", err)
	}
	tmpName := tmp.Name()
	if err := writeArchive(tmp, dir, files); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return false, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, ArchiveFile)); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("moving archive into %s: %w", dir, err)
	}

	for _, name := range files {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return true, fmt.Errorf("removing archived file: %w", err)
		}
	}
	return true, nil
}

func writeArchive(w io.Writer, dir string, files []string) error {
	bz, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	if err != nil {
		return fmt.Errorf("creating bzip2 writer: %w", err)
	}
	tw := tar.NewWriter(bz)
	root := filepath.Base(filepath.Clean(dir))

	// The summary goes into the bundle too so the archive is self-contained.
	names := files
	if HasSummary(dir) {
		names = append([]string{SummaryFile}, files...)
	}
	replaced := make(map[string]bool, len(names))
	for _, name := range names {
		replaced[root+"/"+name] = true
	}
	if err := copyPrevious(tw, filepath.Join(dir, ArchiveFile), replaced); err != nil {
		return err
	}
	for _, name := range names {
		if err := addFile(tw, filepath.Join(dir, name), root+"/"+name); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("finishing tar: %w", err)
	}
	if err := bz.Close(); err != nil {
		return fmt.Errorf("finishing bzip2: %w", err)
	}
	return nil
}

// copyPrevious copies the entries of an existing archive at path into tw,
// skipping the names in replaced. A missing archive is not an error.
func copyPrevious(tw *tar.Writer, path string, replaced map[string]bool) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening previous archive: %w", err)
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return fmt.Errorf("reading previous archive %s: %w", path, err)
	}
	defer bz.Close()
	tr := tar.NewReader(bz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading previous archive %s: %w", path, err)
		}
		if replaced[hdr.Name] {
			continue
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing tar header for %s: %w", hdr.Name, err)
		}
		if _, err := io.Copy(tw, tr); err != nil {
			return fmt.Errorf("carrying over %s: %w", hdr.Name, err)
		}
	}
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("tar header for %s: %w", path, err)
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing tar header for %s: %w", path, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("archiving %s: %w", path, err)
	}
	return nil
}
