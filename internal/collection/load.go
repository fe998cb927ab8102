package collection

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/signalnine/plannerbench/internal/config"
	"github.com/signalnine/plannerbench/internal/result"
)

// Planner is one planner's results, indexed by domain and problem.
type Planner struct {
	Name           string
	TotalTime      float64
	TimesPerDomain map[string]float64
	Rewards        map[string]map[string]float64
	Confidence95   map[string]map[string]float64
	Times          map[string]map[string]float64
}

// DomainTime returns the planner's time on a domain; ok is false when the
// planner has no entry for it or reported a negative (unavailable) time.
func (p *Planner) DomainTime(domain string) (float64, bool) {
	t, ok := p.TimesPerDomain[domain]
	return t, ok && t >= 0
}

type BaselineOpts struct {
	// SeedMin makes baseline rewards part of each instance's minimum.
	SeedMin bool
}

// LoadBaseline reads the reference summary in dir and returns the canonical
// domain set. The baseline is not a planner.
func LoadBaseline(dir string, opts BaselineOpts) (*DomainSet, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: no directory %s", ErrMissingBaseline, dir)
	}
	if !result.HasSummary(dir) {
		return nil, fmt.Errorf("%w: no %s in %s", ErrMissingBaseline, result.SummaryFile, dir)
	}
	doc, err := result.ReadSummary(dir)
	if err != nil {
		return nil, fmt.Errorf("loading baseline: %w", err)
	}

	set := NewDomainSet()
	for _, d := range doc.Domains {
		for _, p := range d.Problems {
			in, err := set.AddInstance(d.DomainName, p.ProblemName)
			if err != nil {
				return nil, fmt.Errorf("loading baseline %s: %w", dir, err)
			}
			if opts.SeedMin {
				in.Seed = p.AvgReward
				in.HasSeed = true
			}
		}
	}
	return set, nil
}

// LoadPlanner reads a planner summary from dir and records its results in
// set. It returns nil, nil when dir holds no summary. Every domain and
// problem must already be known from the baseline.
func LoadPlanner(dir string, set *DomainSet) (*Planner, error) {
	if set.finalized {
		return nil, ErrFinalized
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() || !result.HasSummary(dir) {
		return nil, nil
	}
	doc, err := result.ReadSummary(dir)
	if err != nil {
		return nil, err
	}

	p := &Planner{
		Name:           doc.PlannerName,
		TotalTime:      doc.Time,
		TimesPerDomain: map[string]float64{},
		Rewards:        map[string]map[string]float64{},
		Confidence95:   map[string]map[string]float64{},
		Times:          map[string]map[string]float64{},
	}

	// Validate everything before recording anything so a bad summary leaves
	// the set untouched.
	seen := map[[2]string]bool{}
	for _, dr := range doc.Domains {
		d, ok := set.Domain(dr.DomainName)
		if !ok {
			return nil, fmt.Errorf("%w: %s in planner %q (%s)", ErrUnknownDomain, dr.DomainName, p.Name, dir)
		}
		for _, pr := range dr.Problems {
			in, ok := d.Instance(pr.ProblemName)
			if !ok {
				return nil, fmt.Errorf("%w: %s/%s in planner %q (%s)", ErrUnknownProblem, dr.DomainName, pr.ProblemName, p.Name, dir)
			}
			key := [2]string{dr.DomainName, pr.ProblemName}
			if seen[key] {
				return nil, fmt.Errorf("%w: %s/%s listed twice by planner %q (%s)", ErrDuplicateProblem, dr.DomainName, pr.ProblemName, p.Name, dir)
			}
			seen[key] = true
			if _, dup := in.Results[p.Name]; dup {
				return nil, fmt.Errorf("%w: %q already has a result for %s/%s", ErrDuplicatePlanner, p.Name, dr.DomainName, pr.ProblemName)
			}
		}
	}

	for _, dr := range doc.Domains {
		d, _ := set.Domain(dr.DomainName)
		p.TimesPerDomain[dr.DomainName] = dr.Time
		p.Rewards[dr.DomainName] = map[string]float64{}
		p.Confidence95[dr.DomainName] = map[string]float64{}
		p.Times[dr.DomainName] = map[string]float64{}

		for _, pr := range dr.Problems {
			in, _ := d.Instance(pr.ProblemName)
			in.Results[p.Name] = pr.AvgReward
			in.Confidence95[p.Name] = pr.Confidence95
			in.Times[p.Name] = pr.Time

			p.Rewards[dr.DomainName][pr.ProblemName] = pr.AvgReward
			p.Confidence95[dr.DomainName][pr.ProblemName] = pr.Confidence95
			p.Times[dr.DomainName][pr.ProblemName] = pr.Time
		}
	}
	return p, nil
}

// LoadAll loads the baseline from root/<baseline dir> and every other planner
// directory under root, then finalizes the set. Planners come back sorted by
// name.
func LoadAll(root string, cfg *config.Config) (*DomainSet, []*Planner, error) {
	set, err := LoadBaseline(filepath.Join(root, cfg.Results.BaselineDir), BaselineOpts{SeedMin: cfg.SeedMinFromBaseline()})
	if err != nil {
		return nil, nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("listing results dir %s: %w", root, err)
	}
	var planners []*Planner
	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || name == cfg.Results.BaselineDir || name == cfg.Results.ServerLogsDir {
			continue
		}
		dir := filepath.Join(root, name)
		p, err := LoadPlanner(dir, set)
		if err != nil {
			return nil, nil, err
		}
		if p == nil {
			log.Printf("skipping %s: no %s", dir, result.SummaryFile)
			continue
		}
		if prev, dup := seen[p.Name]; dup {
			return nil, nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicatePlanner, p.Name, prev, dir)
		}
		seen[p.Name] = dir
		planners = append(planners, p)
	}
	sort.Slice(planners, func(i, j int) bool { return planners[i].Name < planners[j].Name })

	set.Finalize()
	return set, planners, nil
}
