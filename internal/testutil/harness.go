// Package testutil provides a harness for end-to-end conversion tests:
// fixture files on disk in, captured vector output and logs out.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/gafcover/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Files maps relative paths to file contents written into the test dir.
type Files map[string]string

// HarnessResult holds the outcomes of one end-to-end conversion run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	Dir       string
}

// RunCoverage writes the fixture files into a temp directory, resolves the
// config's relative paths against it, runs the app, and captures the data
// output and logs separately. The sample label defaults to "sample" so
// assertions stay independent of the temp path.
func RunCoverage(t *testing.T, files Files, cfg app.Config) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	if cfg.GFAPath != "" {
		cfg.GFAPath = filepath.Join(dir, cfg.GFAPath)
	}
	if cfg.GAFPath != "" && cfg.GAFPath != "-" {
		cfg.GAFPath = filepath.Join(dir, cfg.GAFPath)
	}
	if cfg.Output != "" {
		cfg.Output = filepath.Join(dir, cfg.Output)
	}
	if cfg.Label == "" {
		cfg.Label = "sample"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	resolved, err := app.NewConfig(cfg)
	if err != nil {
		return &HarnessResult{Err: err, Dir: dir}
	}

	outBuf := &SafeBuffer{}
	logBuf := &SafeBuffer{}
	converter := app.NewApp(outBuf, logBuf, resolved)
	runErr := converter.Run(context.Background())

	return &HarnessResult{
		Output:    outBuf.String(),
		LogOutput: logBuf.String(),
		Err:       runErr,
		Dir:       dir,
	}
}
