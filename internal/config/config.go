package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BenchmarkSet     string     `yaml:"benchmark_set"`
	NumberOfRuns     int        `yaml:"number_of_runs"`
	PlannerLabel     string     `yaml:"planner_label"`
	Compress         *bool      `yaml:"compress"`
	Parallel         int        `yaml:"parallel"`
	BaselineSeedsMin *bool      `yaml:"baseline_seeds_min"`
	Results          Results    `yaml:"results"`
	Thresholds       Thresholds `yaml:"thresholds"`
}

type Results struct {
	BaselineDir   string `yaml:"baseline_dir"`
	ServerLogsDir string `yaml:"server_logs_dir"`
}

// Thresholds control report emphasis. A score equal to 1.0 is always top tier.
type Thresholds struct {
	ScoreHigh float64 `yaml:"score_high"`
	TotalHigh float64 `yaml:"total_high"`
	TotalTop  float64 `yaml:"total_top"`
}

const (
	DefaultBenchmarkSet = "IPPC2011"
	DefaultNumberOfRuns = 100
	DefaultPlannerLabel = "PROST"
	DefaultBaselineDir  = "min"
	DefaultServerLogs   = "serverLogs"
)

var DefaultThresholds = Thresholds{
	ScoreHigh: 0.95,
	TotalHigh: 0.9,
	TotalTop:  0.98,
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	if err := validate(cfg); err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// ShouldCompress reports whether summarized directories get archived.
func (c *Config) ShouldCompress() bool {
	return c.Compress == nil || *c.Compress
}

func (c *Config) SetCompress(v bool) {
	c.Compress = &v
}

// SeedMinFromBaseline reports whether baseline rewards take part in the
// per-instance minimum.
func (c *Config) SeedMinFromBaseline() bool {
	return c.BaselineSeedsMin == nil || *c.BaselineSeedsMin
}

func validate(cfg *Config) error {
	if cfg.BenchmarkSet == "" {
		cfg.BenchmarkSet = DefaultBenchmarkSet
	}
	if cfg.NumberOfRuns == 0 {
		cfg.NumberOfRuns = DefaultNumberOfRuns
	}
	if cfg.NumberOfRuns < 1 {
		return fmt.Errorf("number_of_runs must be at least 1")
	}
	if cfg.PlannerLabel == "" {
		cfg.PlannerLabel = DefaultPlannerLabel
	}
	if cfg.Parallel == 0 {
		cfg.Parallel = 1
	}
	if cfg.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1")
	}
	if cfg.Results.BaselineDir == "" {
		cfg.Results.BaselineDir = DefaultBaselineDir
	}
	if cfg.Results.ServerLogsDir == "" {
		cfg.Results.ServerLogsDir = DefaultServerLogs
	}

	th := &cfg.Thresholds
	if th.ScoreHigh == 0 {
		th.ScoreHigh = DefaultThresholds.ScoreHigh
	}
	if th.TotalHigh == 0 {
		th.TotalHigh = DefaultThresholds.TotalHigh
	}
	if th.TotalTop == 0 {
		th.TotalTop = DefaultThresholds.TotalTop
	}
	for name, v := range map[string]float64{
		"score_high": th.ScoreHigh,
		"total_high": th.TotalHigh,
		"total_top":  th.TotalTop,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("thresholds.%s must be within [0,1], got %v", name, v)
		}
	}
	if th.TotalTop < th.TotalHigh {
		return fmt.Errorf("thresholds.total_top (%v) must not be below total_high (%v)", th.TotalTop, th.TotalHigh)
	}
	return nil
}
