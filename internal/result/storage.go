package result

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

const (
	SummaryFile = "result.xml"
	ArchiveFile = "results.bz2"
)

// SummaryPath returns the summary document path inside a result directory.
func SummaryPath(dir string) string {
	return filepath.Join(dir, SummaryFile)
}

// HasSummary reports whether dir already holds a summary document.
func HasSummary(dir string) bool {
	info, err := os.Stat(SummaryPath(dir))
	return err == nil && info.Mode().IsRegular()
}

// WriteSummary writes the summary document to dir. The document is written to
// a temporary file first so a failed write never leaves a truncated summary.
func WriteSummary(dir string, res *PlannerResult) error {
	data, err := xml.MarshalIndent(res, "", "\t")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".result-*.xml")
	if err != nil {
		return fmt.Errorf("creating summary: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing summary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing summary: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing summary: %w", err)
	}
	if err := os.Rename(tmp.Name(), SummaryPath(dir)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// ReadSummary parses the summary document in dir. A missing document is
// reported with an error wrapping fs.ErrNotExist.
func ReadSummary(dir string) (*PlannerResult, error) {
	data, err := os.ReadFile(SummaryPath(dir))
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var res PlannerResult
	if err := xml.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parsing summary %s: %w", SummaryPath(dir), err)
	}
	return &res, nil
}
