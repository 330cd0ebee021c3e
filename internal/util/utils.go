package util

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single line; vector lines can run to tens of kilobytes
const maxLineSize = 16 * 1024 * 1024

// LineReader yields the lines of a plain, gzip or bzip2 file
type LineReader struct {
	path    string
	file    *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
	line    int
}

// OpenLines opens path, choosing the decompressor from the file suffix
func OpenLines(path string) (*LineReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	r := &LineReader{path: path, file: file}

	var src io.Reader = file
	switch {
	case strings.HasSuffix(path, "gz"):
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		r.gz = gz
		src = gz
	case strings.HasSuffix(path, ".bz2"):
		src = bzip2.NewReader(file)
	}

	r.scanner = bufio.NewScanner(src)
	r.scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return r, nil
}

// Next advances to the next line
func (r *LineReader) Next() bool {
	if !r.scanner.Scan() {
		return false
	}
	r.line++
	return true
}

// Text returns the current line without its trailing newline
func (r *LineReader) Text() string {
	return strings.TrimSuffix(r.scanner.Text(), "\r")
}

// LineNumber returns the 1-based number of the current line
func (r *LineReader) LineNumber() int {
	return r.line
}

func (r *LineReader) Path() string {
	return r.path
}

// Err returns the first read error, if any
func (r *LineReader) Err() error {
	if err := r.scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", r.path, err)
	}
	return nil
}

func (r *LineReader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	return r.file.Close()
}

// ForEachLine calls fn for every line of path. A non-nil error from fn stops the scan.
func ForEachLine(path string, fn func(lineNo int, line string) error) error {
	r, err := OpenLines(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for r.Next() {
		if err := fn(r.LineNumber(), r.Text()); err != nil {
			return err
		}
	}
	return r.Err()
}
