package report

import (
	"errors"
	"strconv"
	"strings"

	"github.com/signalnine/plannerbench/internal/collection"
	"github.com/signalnine/plannerbench/internal/config"
	"github.com/signalnine/plannerbench/internal/stats"
)

// Emphasis marks how strongly a cell should be highlighted.
type Emphasis int

const (
	Plain Emphasis = iota
	NearTop
	TopTier
)

func (e Emphasis) String() string {
	switch e {
	case NearTop:
		return "near_top"
	case TopTier:
		return "top_tier"
	default:
		return "plain"
	}
}

func (e Emphasis) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

type TableKind string

const (
	KindRewards    TableKind = "rewards"
	KindScores     TableKind = "scores"
	KindTotalTime  TableKind = "total_time"
	KindTotalScore TableKind = "total_score"
)

type Cell struct {
	Value      float64  `json:"value"`
	Confidence *float64 `json:"confidence95,omitempty"`
	Missing    bool     `json:"missing,omitempty"`
	Emphasis   Emphasis `json:"emphasis"`
}

// Text renders the cell value without markup.
func (c Cell) Text() string {
	if c.Missing {
		return "n/a"
	}
	return formatNumber(c.Value)
}

type Row struct {
	Label string `json:"label"`
	Cells []Cell `json:"cells"`
}

type Table struct {
	Title   string    `json:"title"`
	Kind    TableKind `json:"kind"`
	Columns []string  `json:"columns"`
	Rows    []Row     `json:"rows"`
}

// Document is the format-independent report: tables in display order.
type Document struct {
	Title  string  `json:"title"`
	Tables []Table `json:"tables"`
}

// Build assembles the report tables from a finalized domain set. Planners
// are expected in display order.
func Build(title string, set *collection.DomainSet, planners []*collection.Planner, th config.Thresholds) (*Document, error) {
	if !set.Finalized() {
		return nil, collection.ErrNotFinalized
	}
	doc := &Document{Title: title}
	for _, d := range set.Domains() {
		rewards, err := rewardTable(d, planners, th)
		if err != nil {
			return nil, err
		}
		scores, err := scoreTable(d, planners, th)
		if err != nil {
			return nil, err
		}
		doc.Tables = append(doc.Tables, rewards, scores)
	}
	doc.Tables = append(doc.Tables, totalTimeTable(set, planners))
	total, err := totalScoreTable(set, planners, th)
	if err != nil {
		return nil, err
	}
	doc.Tables = append(doc.Tables, total)
	return doc, nil
}

func instanceColumns(d *collection.Domain) []string {
	var cols []string
	for _, in := range d.Instances() {
		cols = append(cols, in.Name)
	}
	return cols
}

func domainColumns(set *collection.DomainSet) []string {
	var cols []string
	for _, d := range set.Domains() {
		cols = append(cols, d.Name)
	}
	return append(cols, "Total")
}

func instanceEmphasis(score float64, th config.Thresholds) Emphasis {
	switch {
	case score == 1:
		return TopTier
	case score > th.ScoreHigh:
		return NearTop
	default:
		return Plain
	}
}

func domainEmphasis(score float64, th config.Thresholds) Emphasis {
	switch {
	case score == 1:
		return TopTier
	case score > th.TotalHigh:
		return NearTop
	default:
		return Plain
	}
}

func overallEmphasis(score float64, th config.Thresholds) Emphasis {
	switch {
	case score >= th.TotalTop:
		return TopTier
	case score > th.TotalHigh:
		return NearTop
	default:
		return Plain
	}
}

// instanceScore returns the planner's score, or ok=false when the planner has
// no result on the instance.
func instanceScore(in *collection.Instance, planner string) (float64, bool, error) {
	s, err := in.Score(planner)
	if errors.Is(err, collection.ErrNoResult) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return s, true, nil
}

func rewardTable(d *collection.Domain, planners []*collection.Planner, th config.Thresholds) (Table, error) {
	t := Table{Title: "Rewards: " + d.Name, Kind: KindRewards, Columns: instanceColumns(d)}
	for _, p := range planners {
		row := Row{Label: p.Name}
		for _, in := range d.Instances() {
			s, ok, err := instanceScore(in, p.Name)
			if err != nil {
				return Table{}, err
			}
			if !ok {
				row.Cells = append(row.Cells, Cell{Missing: true})
				continue
			}
			conf := in.Confidence95[p.Name]
			row.Cells = append(row.Cells, Cell{
				Value:      in.Results[p.Name],
				Confidence: &conf,
				Emphasis:   instanceEmphasis(s, th),
			})
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func scoreTable(d *collection.Domain, planners []*collection.Planner, th config.Thresholds) (Table, error) {
	t := Table{Title: "IPPC Scores: " + d.Name, Kind: KindScores, Columns: instanceColumns(d)}
	for _, p := range planners {
		row := Row{Label: p.Name}
		for _, in := range d.Instances() {
			s, ok, err := instanceScore(in, p.Name)
			if err != nil {
				return Table{}, err
			}
			if !ok {
				row.Cells = append(row.Cells, Cell{Missing: true})
				continue
			}
			row.Cells = append(row.Cells, Cell{Value: s, Emphasis: instanceEmphasis(s, th)})
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func minutesCell(seconds float64, ok bool) Cell {
	if !ok {
		return Cell{Missing: true}
	}
	return Cell{Value: stats.Round2(seconds / 60)}
}

func totalTimeTable(set *collection.DomainSet, planners []*collection.Planner) Table {
	t := Table{Title: "Total Time (in minutes)", Kind: KindTotalTime, Columns: domainColumns(set)}
	for _, p := range planners {
		row := Row{Label: p.Name}
		for _, d := range set.Domains() {
			row.Cells = append(row.Cells, minutesCell(p.DomainTime(d.Name)))
		}
		row.Cells = append(row.Cells, minutesCell(p.TotalTime, p.TotalTime >= 0))
		t.Rows = append(t.Rows, row)
	}
	return t
}

func totalScoreTable(set *collection.DomainSet, planners []*collection.Planner, th config.Thresholds) (Table, error) {
	t := Table{Title: "IPPC Scores: Total", Kind: KindTotalScore, Columns: domainColumns(set)}
	for _, p := range planners {
		row := Row{Label: p.Name}
		for _, d := range set.Domains() {
			avg, err := d.AverageScore(p.Name)
			if err != nil {
				return Table{}, err
			}
			row.Cells = append(row.Cells, Cell{Value: avg, Emphasis: domainEmphasis(avg, th)})
		}
		total, err := set.TotalScore(p.Name)
		if err != nil {
			return Table{}, err
		}
		row.Cells = append(row.Cells, Cell{Value: total, Emphasis: overallEmphasis(total, th)})
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// formatNumber prints the shortest representation that round-trips, always
// with a decimal point, so 1 prints as "1.0".
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.ContainsRune(s, '.') {
		return s
	}
	return s + ".0"
}
