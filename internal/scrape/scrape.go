package scrape

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/signalnine/plannerbench/internal/stats"
)

var (
	ErrMalformedLog  = errors.New("malformed log")
	ErrMissingReward = fmt.Errorf("%w: cannot read average reward", ErrMalformedLog)
	ErrMissingTime   = fmt.Errorf("%w: cannot read total time", ErrMalformedLog)
	ErrMissingRounds = fmt.Errorf("%w: missing round by round results", ErrMalformedLog)
)

const (
	rewardLabel   = "AVERAGE REWARD"
	roundPrefix   = "END OF ROUND"
	timeSuffix    = " complete running time:"
	rewardWindow  = 3
	tailBlockSize = 1024
)

// LogResult is what a single planner run log yields.
type LogResult struct {
	AverageReward float64
	HasReward     bool
	TotalTime     float64
	HasTime       bool
	RoundRewards  []float64
}

// Opts controls how log markers are matched.
type Opts struct {
	// PlannerLabel is the name printed before "complete running time:".
	PlannerLabel string
}

// ParseLog scrapes the average reward and total time from the tail of the
// log and the per-round rewards from the whole file. Missing markers are
// reported through HasReward/HasTime, not as errors; errors are I/O only.
func ParseLog(path string, opts Opts) (*LogResult, error) {
	res := &LogResult{}

	lines, err := Tail(path, rewardWindow)
	if err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		res.AverageReward, res.HasReward = parseReward(lines[0])
	}

	lines, err = Tail(path, 1)
	if err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		res.TotalTime, res.HasTime = parseTime(lines[len(lines)-1], opts.PlannerLabel)
	}

	res.RoundRewards, err = scanRounds(path)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Validate checks that a scraped log is complete for the expected number of runs.
func (r *LogResult) Validate(expectedRuns int) error {
	if !r.HasReward {
		return ErrMissingReward
	}
	if !r.HasTime {
		return ErrMissingTime
	}
	if len(r.RoundRewards) != expectedRuns {
		return fmt.Errorf("%w: got %d rounds, want %d", ErrMissingRounds, len(r.RoundRewards), expectedRuns)
	}
	return nil
}

func trimMarker(line string) string {
	return strings.TrimLeft(strings.TrimSpace(line), "> \t")
}

func parseReward(line string) (float64, bool) {
	parts := strings.Split(line, ":")
	if len(parts) != 2 || trimMarker(parts[0]) != rewardLabel {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, false
	}
	return stats.Round2(v), true
}

// parseTime reads "<label> complete running time: 12.34s". The trailing unit
// character is dropped before the value is parsed.
func parseTime(line, label string) (float64, bool) {
	line = trimMarker(line)
	if !strings.HasPrefix(line, label+timeSuffix) {
		return 0, false
	}
	line = line[:len(line)-1]
	fields := strings.Split(line, " ")
	v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, false
	}
	return stats.Round2(v), true
}

func scanRounds(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	var rounds []float64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := trimMarker(sc.Text())
		if !strings.HasPrefix(line, roundPrefix) {
			continue
		}
		fields := strings.Fields(line)
		v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad round reward %q", ErrMalformedLog, line)
		}
		rounds = append(rounds, stats.Round2(v))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return rounds, nil
}

// Tail returns at most the last n lines of the file, reading backwards in
// fixed-size blocks so large logs are not read in full.
func Tail(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seeking log: %w", err)
	}

	var (
		buf   []byte
		found int
		pos   = size
	)
	// Read one extra newline so the first kept line is complete.
	for pos > 0 && found <= n {
		chunk := int64(tailBlockSize)
		if pos < chunk {
			chunk = pos
		}
		pos -= chunk
		block := make([]byte, chunk)
		if _, err := f.ReadAt(block, pos); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading log: %w", err)
		}
		found += strings.Count(string(block), "\n")
		buf = append(block, buf...)
	}

	lines := strings.Split(strings.ReplaceAll(string(buf), "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
