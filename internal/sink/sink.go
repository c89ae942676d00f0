// Package sink opens the newline-delimited text resources a run reads and
// writes: the dork source, the link sink and the vulnerability sink.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// LinkFileMode is the permission the link sink is created with.
const LinkFileMode os.FileMode = 0o666

// ResourceAccessError reports a text resource that cannot be opened.
type ResourceAccessError struct {
	Path string
	Op   string
	Err  error
}

func (e *ResourceAccessError) Error() string {
	return fmt.Sprintf("error opening the '%s' file for %s: %v", e.Path, e.Op, e.Err)
}

func (e *ResourceAccessError) Unwrap() error { return e.Err }

// WriteMode selects how an output resource is opened.
type WriteMode int

const (
	// Truncate discards any previous content.
	Truncate WriteMode = iota
	// Append keeps previous content and writes after it.
	Append
)

// Writer is a line-oriented output resource. Lines are flushed as they are
// written so that a reader opening the file afterwards sees every line.
type Writer struct {
	mu    sync.Mutex
	path  string
	f     *os.File
	w     *bufio.Writer
	lines int
}

// Create opens path for writing with mode. perm is used when the file is
// created.
func Create(path string, mode WriteMode, perm os.FileMode) (*Writer, error) {
	flags := os.O_WRONLY | os.O_CREATE
	op := "writing"
	if mode == Append {
		flags |= os.O_APPEND
		op = "appending"
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return nil, &ResourceAccessError{Path: path, Op: op, Err: err}
	}
	return &Writer{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// WriteLine writes s followed by a newline.
func (w *Writer) WriteLine(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.WriteString(s); err != nil {
		return fmt.Errorf("sink %s: %w", w.path, err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("sink %s: %w", w.path, err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("sink %s: %w", w.path, err)
	}
	w.lines++
	return nil
}

// Lines returns the number of lines written through w.
func (w *Writer) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

// Path returns the resource path.
func (w *Writer) Path() string { return w.path }

// Close flushes and closes the resource.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("sink %s: %w", w.path, err)
	}
	return w.f.Close()
}

// Open opens path for reading.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ResourceAccessError{Path: path, Op: "reading", Err: err}
	}
	return f, nil
}

// ReadLines returns every non-empty line of r, with any trailing carriage
// return removed.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// ReadFile opens path and returns its non-empty lines.
func ReadFile(path string) ([]string, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}
