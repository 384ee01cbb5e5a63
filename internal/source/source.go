// Package source provides byte-stream sources for the graph and alignment
// inputs: transparent gzip decompression for .gz/.bgz files, and explicit
// support for re-reading a source from the start, which the query-weighting
// mode depends on.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrStreamNotRewindable is returned when a second pass over a source is
// requested but the underlying stream cannot be reopened from the start.
var ErrStreamNotRewindable = errors.New("stream not rewindable")

// maxLineBytes bounds a single input line. GFA segment lines carry full
// node sequences, which can run to megabytes on real pangenomes.
const maxLineBytes = 64 * 1024 * 1024

// Opener hands out fresh readers over the same underlying byte stream.
// Every call to Open must yield a reader positioned at the start.
type Opener interface {
	// Label identifies the source in errors and output, usually a file path.
	Label() string

	// Open returns a reader over the stream from its beginning. Openers
	// that cannot rewind fail with ErrStreamNotRewindable on a second call.
	Open() (io.ReadCloser, error)

	// Rewindable reports whether Open may be called more than once.
	Rewindable() bool
}

// File returns a rewindable Opener backed by a file on disk. Files whose
// name ends in .gz or .bgz are decompressed transparently; bgzf is a
// multi-member gzip stream, which the multistream reader handles.
func File(path string) Opener {
	return &fileOpener{path: path}
}

type fileOpener struct {
	path string
}

func (f *fileOpener) Label() string { return f.path }

func (f *fileOpener) Rewindable() bool { return true }

func (f *fileOpener) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.path, err)
	}
	if !isCompressed(f.path) {
		return file, nil
	}
	zr, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to open gzip stream %s: %w", f.path, err)
	}
	zr.Multistream(true)
	return &gzipReadCloser{zr: zr, file: file}, nil
}

func isCompressed(path string) bool {
	return strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".bgz")
}

// gzipReadCloser closes both the decompressor and the underlying file.
type gzipReadCloser struct {
	zr   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipReadCloser) Close() error {
	zerr := g.zr.Close()
	ferr := g.file.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// Reader adapts a one-shot reader such as stdin into an Opener. The
// resulting source supports exactly one Open and is not rewindable.
func Reader(label string, r io.Reader) Opener {
	return &readerOpener{label: label, r: r}
}

type readerOpener struct {
	label  string
	r      io.Reader
	opened bool
}

func (r *readerOpener) Label() string { return r.label }

func (r *readerOpener) Rewindable() bool { return false }

func (r *readerOpener) Open() (io.ReadCloser, error) {
	if r.opened {
		return nil, fmt.Errorf("%s: %w", r.label, ErrStreamNotRewindable)
	}
	r.opened = true
	return io.NopCloser(r.r), nil
}

// ForEachLine opens the source and invokes fn for every line together with
// its 1-based line number. Iteration stops at the first error from fn.
func ForEachLine(op Opener, fn func(line string, num int) error) error {
	rc, err := op.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	num := 0
	for scanner.Scan() {
		num++
		if err := fn(scanner.Text(), num); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", op.Label(), err)
	}
	return nil
}
