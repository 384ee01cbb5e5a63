package app

import "errors"

// Config holds the resolved settings for one conversion run.
type Config struct {
	GFAPath string // graph description source
	GAFPath string // alignment stream source; "-" reads stdin
	Output  string // destination file; empty means the app's output writer
	Label   string // sample label; defaults to GAFPath

	LenScale       bool
	CoverageColumn bool
	WeightQueries  bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GFAPath == "" {
		return nil, errors.New("a graph (GFA) source is required")
	}
	if cfg.GAFPath == "" {
		return nil, errors.New("an alignment (GAF) source is required")
	}
	if cfg.Label == "" {
		cfg.Label = cfg.GAFPath
	}
	return &cfg, nil
}
