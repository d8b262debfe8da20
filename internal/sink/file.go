package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

// File writes one "<index>:<structured>" line per entry.
type File struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

// NewFile creates or truncates path immediately, so the output file exists
// even if the run fails before the first entry.
func NewFile(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", path, err)
	}
	return &File{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

func (s *File) Name() string { return "file" }

func (s *File) Write(_ context.Context, e Entry) error {
	if _, err := io.WriteString(s.w, e.Line()); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

func (s *File) Flush(_ context.Context) error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", s.path, err)
	}
	return nil
}

// Close flushes buffered lines and closes the file.
func (s *File) Close() error {
	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flushing %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing %s: %w", s.path, closeErr)
	}
	return nil
}
