package collection

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/signalnine/plannerbench/internal/result"
	"github.com/signalnine/plannerbench/internal/stats"
)

var (
	ErrMissingBaseline = errors.New("missing baseline results")

	// ErrInconsistent marks planner data that does not match the baseline.
	ErrInconsistent     = errors.New("inconsistent results")
	ErrUnknownDomain    = fmt.Errorf("%w: unknown domain", ErrInconsistent)
	ErrUnknownProblem   = fmt.Errorf("%w: unknown problem", ErrInconsistent)
	ErrDuplicatePlanner = fmt.Errorf("%w: duplicate planner", ErrInconsistent)
	ErrDuplicateProblem = fmt.Errorf("%w: duplicate problem", ErrInconsistent)

	ErrFinalized    = errors.New("domain set already finalized")
	ErrNotFinalized = errors.New("domain set not finalized")
	ErrNoResult     = errors.New("planner has no result for instance")
)

// Instance is one problem of a domain with every planner's result on it.
type Instance struct {
	Domain string
	Name   string

	// Seed is the baseline reward; it takes part in MinValue when HasSeed.
	Seed    float64
	HasSeed bool

	Results      map[string]float64
	Confidence95 map[string]float64
	Times        map[string]float64

	MinValue   float64
	MaxValue   float64
	NormFactor float64
	finalized  bool
}

func newInstance(domain, name string) *Instance {
	return &Instance{
		Domain:       domain,
		Name:         name,
		Results:      map[string]float64{},
		Confidence95: map[string]float64{},
		Times:        map[string]float64{},
	}
}

// Finalize derives MinValue, MaxValue and NormFactor from every recorded
// result. It must run after the last planner is loaded.
func (in *Instance) Finalize() {
	in.MinValue = math.Inf(1)
	in.MaxValue = math.Inf(-1)
	for _, r := range in.Results {
		in.MinValue = math.Min(in.MinValue, r)
		in.MaxValue = math.Max(in.MaxValue, r)
	}
	if in.HasSeed {
		in.MinValue = math.Min(in.MinValue, in.Seed)
		if len(in.Results) == 0 {
			in.MaxValue = in.Seed
		}
	}
	in.NormFactor = in.MaxValue - in.MinValue
	in.finalized = true
}

// Score returns the planner's normalized score on this instance:
// (reward-min)/(max-min) rounded to two places, 1 when all results tie and
// 0 for a reward below the minimum.
func (in *Instance) Score(planner string) (float64, error) {
	if !in.finalized {
		return 0, fmt.Errorf("%w: %s/%s", ErrNotFinalized, in.Domain, in.Name)
	}
	r, ok := in.Results[planner]
	if !ok {
		return 0, fmt.Errorf("%w: %s on %s/%s", ErrNoResult, planner, in.Domain, in.Name)
	}
	switch {
	case r < in.MinValue:
		return 0, nil
	case in.NormFactor == 0:
		return 1, nil
	}
	return stats.Round2((r - in.MinValue) / in.NormFactor), nil
}

// Domain groups instances, kept ordered by problem id.
type Domain struct {
	Name      string
	order     []string
	instances map[string]*Instance
}

func newDomain(name string) *Domain {
	return &Domain{Name: name, instances: map[string]*Instance{}}
}

func (d *Domain) add(in *Instance) error {
	if _, dup := d.instances[in.Name]; dup {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateProblem, d.Name, in.Name)
	}
	d.instances[in.Name] = in
	i, _ := slices.BinarySearchFunc(d.order, in.Name, result.CompareProblemIDs)
	d.order = slices.Insert(d.order, i, in.Name)
	return nil
}

// Instances returns the domain's instances ordered by problem id.
func (d *Domain) Instances() []*Instance {
	out := make([]*Instance, len(d.order))
	for i, name := range d.order {
		out[i] = d.instances[name]
	}
	return out
}

func (d *Domain) Instance(name string) (*Instance, bool) {
	in, ok := d.instances[name]
	return in, ok
}

// AverageScore is the planner's mean score over the domain's instances,
// rounded to two places. Instances without a result count as 0.
func (d *Domain) AverageScore(planner string) (float64, error) {
	sum, n, err := d.scoreSum(planner)
	if err != nil || n == 0 {
		return 0, err
	}
	return stats.Round2(sum / float64(n)), nil
}

func (d *Domain) scoreSum(planner string) (float64, int, error) {
	var sum float64
	for _, in := range d.Instances() {
		s, err := in.Score(planner)
		if err != nil && !errors.Is(err, ErrNoResult) {
			return 0, 0, err
		}
		sum += s
	}
	return sum, len(d.order), nil
}

// DomainSet is the canonical set of domains and instances established by the
// baseline, ordered by domain name.
type DomainSet struct {
	order     []string
	domains   map[string]*Domain
	finalized bool
}

func NewDomainSet() *DomainSet {
	return &DomainSet{domains: map[string]*Domain{}}
}

// AddInstance registers an instance, creating its domain if needed.
func (s *DomainSet) AddInstance(domain, problem string) (*Instance, error) {
	if s.finalized {
		return nil, ErrFinalized
	}
	d, ok := s.domains[domain]
	if !ok {
		d = newDomain(domain)
		s.domains[domain] = d
		i, _ := slices.BinarySearch(s.order, domain)
		s.order = slices.Insert(s.order, i, domain)
	}
	in := newInstance(domain, problem)
	if err := d.add(in); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *DomainSet) Domains() []*Domain {
	out := make([]*Domain, len(s.order))
	for i, name := range s.order {
		out[i] = s.domains[name]
	}
	return out
}

func (s *DomainSet) Domain(name string) (*Domain, bool) {
	d, ok := s.domains[name]
	return d, ok
}

func (s *DomainSet) Finalized() bool { return s.finalized }

// Finalize computes min/max/normalization for every instance. Planners can no
// longer be recorded afterwards.
func (s *DomainSet) Finalize() {
	for _, d := range s.Domains() {
		for _, in := range d.Instances() {
			in.Finalize()
		}
	}
	s.finalized = true
}

// TotalScore is the planner's mean score over every instance of every
// domain, rounded to two places.
func (s *DomainSet) TotalScore(planner string) (float64, error) {
	var (
		sum float64
		n   int
	)
	for _, d := range s.Domains() {
		ds, dn, err := d.scoreSum(planner)
		if err != nil {
			return 0, err
		}
		sum += ds
		n += dn
	}
	if n == 0 {
		return 0, nil
	}
	return stats.Round2(sum / float64(n)), nil
}
