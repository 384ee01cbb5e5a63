package app

import "io"

// SetStdin replaces the reader used for a "-" alignment source. This is
// primarily for testing.
func (a *App) SetStdin(r io.Reader) {
	a.stdin = r
}
