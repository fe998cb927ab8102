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
	"github.com/signalnine/plannerbench/internal/result"
	"github.com/signalnine/plannerbench/internal/scrape"
	"github.com/signalnine/plannerbench/internal/stats"
)

var (
	// ErrRunFailed marks a directory whose run left a non-empty .err file.
	ErrRunFailed = errors.New("run failed")
	// ErrBadFileName marks a log whose name does not follow <domain>_...__<problem>.log.
	ErrBadFileName = errors.New("malformed log file name")
	// ErrInconsistent marks data that cannot be summarized without guessing.
	// It halts the whole pipeline.
	ErrInconsistent     = errors.New("inconsistent results")
	ErrDuplicateProblem = fmt.Errorf("%w: duplicate problem", ErrInconsistent)
)

type Outcome int

const (
	Absent Outcome = iota
	AlreadySummarized
	Archived
	Written
)

func (o Outcome) String() string {
	switch o {
	case Absent:
		return "absent"
	case AlreadySummarized:
		return "already summarized"
	case Archived:
		return "archived"
	case Written:
		return "written"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ParseFileName extracts the domain and problem id from a log file name of
// the form <domain>_<anything>__<problem>.<ext>.
func ParseFileName(name string) (domain, problem string, err error) {
	base := filepath.Base(name)
	domain, _, ok := strings.Cut(base, "_")
	if !ok || domain == "" {
		return "", "", fmt.Errorf("%w: %s: no domain prefix", ErrBadFileName, base)
	}
	_, rest, ok := strings.Cut(base, "__")
	if !ok {
		return "", "", fmt.Errorf("%w: %s: no __ separator", ErrBadFileName, base)
	}
	problem, _, _ = strings.Cut(rest, ".")
	if problem == "" {
		return "", "", fmt.Errorf("%w: %s: empty problem id", ErrBadFileName, base)
	}
	return domain, problem, nil
}

type problemRun struct {
	reward float64
	time   float64
	rounds []float64
}

// Dir summarizes the raw logs in one planner result directory into
// result.xml. Nothing is written unless every log in the directory is
// complete.
func Dir(dir, plannerName string, cfg *config.Config) (Outcome, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return Absent, nil
	}

	if result.HasSummary(dir) {
		if !cfg.ShouldCompress() {
			return AlreadySummarized, nil
		}
		if _, err := os.Stat(filepath.Join(dir, result.ArchiveFile)); err == nil {
			return AlreadySummarized, nil
		}
		if _, err := result.Archive(dir); err != nil {
			return AlreadySummarized, fmt.Errorf("archiving %s: %w", dir, err)
		}
		return Archived, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Absent, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".err") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return Absent, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		if info.Size() != 0 {
			return Absent, fmt.Errorf("%w: %s contains a nonempty error file %s", ErrRunFailed, dir, e.Name())
		}
	}

	log.Printf("parsing results in %s", dir)

	runs := map[string]map[string]problemRun{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".log") || strings.HasSuffix(name, "server.log") {
			continue
		}
		path := filepath.Join(dir, name)
		domain, problem, err := ParseFileName(name)
		if err != nil {
			return Absent, err
		}
		lr, err := scrape.ParseLog(path, scrape.Opts{PlannerLabel: cfg.PlannerLabel})
		if err != nil {
			return Absent, fmt.Errorf("scraping %s: %w", path, err)
		}
		if err := lr.Validate(cfg.NumberOfRuns); err != nil {
			return Absent, fmt.Errorf("%s: %w", path, err)
		}
		if runs[domain] == nil {
			runs[domain] = map[string]problemRun{}
		}
		if _, dup := runs[domain][problem]; dup {
			return Absent, fmt.Errorf("%w: %s/%s in %s", ErrDuplicateProblem, domain, problem, dir)
		}
		runs[domain][problem] = problemRun{reward: lr.AverageReward, time: lr.TotalTime, rounds: lr.RoundRewards}
	}

	doc, err := build(plannerName, cfg, runs)
	if err != nil {
		return Absent, fmt.Errorf("summarizing %s: %w", dir, err)
	}
	if err := result.WriteSummary(dir, doc); err != nil {
		return Absent, err
	}
	log.Printf("parsing results in %s finished", dir)

	if cfg.ShouldCompress() {
		if _, err := result.Archive(dir); err != nil {
			return Written, fmt.Errorf("archiving %s: %w", dir, err)
		}
	}
	log.Printf("%s created", result.SummaryPath(dir))
	return Written, nil
}

func build(plannerName string, cfg *config.Config, runs map[string]map[string]problemRun) (*result.PlannerResult, error) {
	doc := &result.PlannerResult{
		PlannerName:  plannerName,
		BenchmarkSet: cfg.BenchmarkSet,
		NumberOfRuns: cfg.NumberOfRuns,
	}

	domains := make([]string, 0, len(runs))
	for d := range runs {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	var total float64
	for _, d := range domains {
		problems := make([]string, 0, len(runs[d]))
		for p := range runs[d] {
			problems = append(problems, p)
		}
		sort.Slice(problems, func(i, j int) bool { return result.CompareProblemIDs(problems[i], problems[j]) < 0 })

		dr := result.DomainResult{DomainName: d}
		for _, p := range problems {
			run := runs[d][p]
			conf, err := stats.Confidence95(run.rounds)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", d, p, err)
			}
			dr.Problems = append(dr.Problems, result.ProblemResult{
				ProblemName:  p,
				AvgReward:    run.reward,
				Confidence95: stats.Round2(conf),
				Time:         run.time,
			})
			dr.Time += run.time
		}
		dr.Time = stats.Round2(dr.Time)
		total += dr.Time
		doc.Domains = append(doc.Domains, dr)
	}
	doc.Time = stats.Round2(total)
	return doc, nil
}
