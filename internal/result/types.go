package result

import (
	"cmp"
	"encoding/xml"
	"strconv"
	"strings"
)

// PlannerResult is the summary document written once per planner result
// directory and read back by the analyzer.
type PlannerResult struct {
	XMLName      xml.Name       `xml:"PlannerResult" json:"-"`
	PlannerName  string         `xml:"PlannerName" json:"planner_name"`
	BenchmarkSet string         `xml:"BenchmarkSet" json:"benchmark_set"`
	NumberOfRuns int            `xml:"NumberOfRuns" json:"number_of_runs"`
	Time         float64        `xml:"Time" json:"time"`
	Domains      []DomainResult `xml:"Domain" json:"domains"`
}

type DomainResult struct {
	DomainName string          `xml:"DomainName" json:"domain_name"`
	Time       float64         `xml:"Time" json:"time"`
	Problems   []ProblemResult `xml:"Problem" json:"problems"`
}

type ProblemResult struct {
	ProblemName  string  `xml:"ProblemName" json:"problem_name"`
	AvgReward    float64 `xml:"AvgReward" json:"avg_reward"`
	Confidence95 float64 `xml:"Confidence95" json:"confidence95"`
	Time         float64 `xml:"Time" json:"time"`
}

// ProblemCount returns the number of problems across all domains.
func (p *PlannerResult) ProblemCount() int {
	n := 0
	for _, d := range p.Domains {
		n += len(d.Problems)
	}
	return n
}

// CompareProblemIDs orders problem identifiers: numeric ids numerically and
// before non-numeric ones, everything else lexically.
func CompareProblemIDs(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return cmp.Compare(ai, bi)
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
