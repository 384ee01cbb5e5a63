// Package job loads HCL job files describing a coverage run: the graph and
// alignment sources plus the accumulation and output toggles. A job file
// is the declarative alternative to spelling the same settings out as
// command-line flags; flags win when both are given.
package job

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/gafcover/internal/ctxlog"
	"github.com/vk/gafcover/internal/fsutil"
)

// Job is the resolved content of a job path. Exactly one coverage block
// must be defined across all loaded files.
type Job struct {
	Label          string
	GFA            string
	GAF            string
	Output         string
	LenScale       bool
	CoverageColumn bool
	WeightQueries  bool
}

// coverageBlock mirrors a `coverage "label" { ... }` block. Attribute
// values stay as expressions so resolution can report per-attribute
// diagnostics with source ranges.
type coverageBlock struct {
	Label string   `hcl:"label,label"`
	Body  hcl.Body `hcl:",remain"`
}

// jobFile represents the top-level structure of one job file for decoding.
type jobFile struct {
	Coverage []*coverageBlock `hcl:"coverage,block"`
	Body     hcl.Body         `hcl:",remain"`
}

// Load reads the job path, a single file or a directory of .hcl files, and
// resolves the one coverage block found across them.
func Load(ctx context.Context, path string) (*Job, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading job from path.", "path", path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat job path %s: %w", path, err)
	}
	files := []string{path}
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to find job files in %s: %w", path, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no .hcl job files found in %s", path)
		}
	}

	parser := hclparse.NewParser()
	var blocks []*coverageBlock
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse job file %s: %w", file, diags)
		}
		var parsed jobFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode job file %s: %w", file, diags)
		}
		blocks = append(blocks, parsed.Coverage...)
	}

	if len(blocks) != 1 {
		return nil, fmt.Errorf("job path %s must define exactly one coverage block, found %d", path, len(blocks))
	}
	logger.Debug("Job files loaded.", "files", len(files))
	return resolve(blocks[0])
}

// resolve evaluates the block's attribute expressions into a Job. Values
// are constant expressions; there is no evaluation context.
func resolve(block *coverageBlock) (*Job, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read coverage block attributes: %w", diags)
	}

	j := &Job{Label: block.Label}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate attribute %q: %w", name, diags)
		}
		if err := j.assign(name, val, attr.Range); err != nil {
			return nil, err
		}
	}

	if j.GFA == "" || j.GAF == "" {
		return nil, fmt.Errorf("coverage block %q must set both gfa and gaf", block.Label)
	}
	return j, nil
}

func (j *Job) assign(name string, val cty.Value, rng hcl.Range) error {
	switch name {
	case "gfa":
		return asString(&j.GFA, name, val, rng)
	case "gaf":
		return asString(&j.GAF, name, val, rng)
	case "output":
		return asString(&j.Output, name, val, rng)
	case "len_scale":
		return asBool(&j.LenScale, name, val, rng)
	case "coverage_column":
		return asBool(&j.CoverageColumn, name, val, rng)
	case "weight_queries":
		return asBool(&j.WeightQueries, name, val, rng)
	default:
		return fmt.Errorf("%s: unsupported attribute %q in coverage block", rng, name)
	}
}

func asString(dst *string, name string, val cty.Value, rng hcl.Range) error {
	converted, err := convert.Convert(val, cty.String)
	if err != nil || converted.IsNull() {
		return fmt.Errorf("%s: attribute %q must be a string", rng, name)
	}
	*dst = converted.AsString()
	return nil
}

func asBool(dst *bool, name string, val cty.Value, rng hcl.Range) error {
	converted, err := convert.Convert(val, cty.Bool)
	if err != nil || converted.IsNull() {
		return fmt.Errorf("%s: attribute %q must be a bool", rng, name)
	}
	*dst = converted.True()
	return nil
}
