package summarize

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/signalnine/plannerbench/internal/config"
	"github.com/signalnine/plannerbench/internal/runner"
)

// DirResult is the outcome of summarizing one planner directory.
type DirResult struct {
	Dir     string
	Planner string
	Outcome Outcome
	Err     error
}

// Report tallies a summarization pass over a results root.
type Report struct {
	Dirs []DirResult
}

// Count returns how many directories ended with the given outcome and no error.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, d := range r.Dirs {
		if d.Err == nil && d.Outcome == o {
			n++
		}
	}
	return n
}

// Failed returns the directories that were skipped because of an error.
func (r *Report) Failed() []DirResult {
	var failed []DirResult
	for _, d := range r.Dirs {
		if d.Err != nil {
			failed = append(failed, d)
		}
	}
	return failed
}

// PlannerName derives the planner name from its result directory name.
func PlannerName(dirName string) string {
	return strings.ReplaceAll(dirName, "_", " ")
}

// All summarizes every planner directory under root. Problems confined to a
// single directory are logged and that directory is skipped; an
// inconsistency anywhere stops the pass before any further directory is
// started and is returned.
func All(root string, cfg *config.Config) (*Report, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing results dir %s: %w", root, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == cfg.Results.ServerLogsDir {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	rep := &Report{Dirs: make([]DirResult, len(names))}
	jobs := make([]runner.Job, len(names))
	for i, name := range names {
		i, name := i, name
		jobs[i] = func() error {
			dir := filepath.Join(root, name)
			planner := PlannerName(name)
			outcome, err := Dir(dir, planner, cfg)
			rep.Dirs[i] = DirResult{Dir: dir, Planner: planner, Outcome: outcome, Err: err}
			return err
		}
	}
	runner.RunPoolUntil(cfg.Parallel, jobs, func(err error) bool {
		return errors.Is(err, ErrInconsistent)
	})

	// Directories never started after a halt are left out of the report.
	ran := rep.Dirs[:0]
	for _, d := range rep.Dirs {
		if d.Dir != "" {
			ran = append(ran, d)
		}
	}
	rep.Dirs = ran

	for _, d := range rep.Dirs {
		if d.Err == nil {
			continue
		}
		if errors.Is(d.Err, ErrInconsistent) {
			return rep, d.Err
		}
		log.Printf("cannot summarize results in %s: %v", d.Dir, d.Err)
	}
	return rep, nil
}
