// Package reader provides the line source feeding the classification
// pipeline: plain, gzip or zstd compressed input, scrubbed to valid UTF-8,
// with blank lines dropped.
package reader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const initialBufferSize = 64 * 1024

// Open opens path for reading, transparently decompressing .gz and .zst
// files. "-" means stdin.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}

	switch filepath.Ext(path) {
	case ".gz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening gzip input: %w", err)
		}
		return &decompressedReader{reader: gr, file: f}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening zstd input: %w", err)
		}
		return &decompressedReader{reader: zr.IOReadCloser(), file: f}, nil
	default:
		return f, nil
	}
}

type decompressedReader struct {
	reader io.ReadCloser
	file   *os.File
}

func (r *decompressedReader) Read(p []byte) (int, error) {
	return r.reader.Read(p)
}

func (r *decompressedReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Scanner yields non-blank lines from an input stream. Bytes that do not
// form valid UTF-8 are dropped at the rune level, never failing the line or
// the run. Lines have no length cap; one oversized line must not abort the
// lines that follow it.
type Scanner struct {
	r    *bufio.Reader
	line string
	err  error
	done bool
}

// NewScanner creates a Scanner over r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, initialBufferSize)}
}

// Scan advances to the next non-blank line.
func (s *Scanner) Scan() bool {
	for !s.done {
		raw, err := s.r.ReadString('\n')
		if err != nil {
			s.done = true
			if err != io.EOF {
				s.err = err
			}
		}
		line := strings.ToValidUTF8(strings.TrimRight(raw, "\r\n"), "")
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.line = line
		return true
	}
	return false
}

// Text returns the current line.
func (s *Scanner) Text() string {
	return s.line
}

// Err returns the first error encountered while reading.
func (s *Scanner) Err() error {
	return s.err
}

// Lines reads every non-blank line from r.
func Lines(r io.Reader) ([]string, error) {
	var lines []string
	s := NewScanner(r)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return lines, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}
