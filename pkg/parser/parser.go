package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrInputNotFound is returned when an input path does not resolve to a
// readable file.
var ErrInputNotFound = errors.New("input file not found")

// ReaderSource implements LogSource over an io.Reader.
// Lines of any length are accepted.
type ReaderSource struct {
	name    string
	reader  *bufio.Reader
	lineNum int
	done    bool
}

// NewReaderSource creates a LogSource reading lines from r.
// name is reported as the Source of every line.
func NewReaderSource(r io.Reader, name string) *ReaderSource {
	return &ReaderSource{
		name:   name,
		reader: bufio.NewReaderSize(r, 64*1024),
	}
}

// Next returns the next line. Returns io.EOF when the reader is exhausted.
func (s *ReaderSource) Next(ctx context.Context) (*LogLine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.done {
		return nil, io.EOF
	}

	text, err := s.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading %s: %w", s.name, err)
	}
	if err == io.EOF {
		s.done = true
		if text == "" {
			return nil, io.EOF
		}
	}

	s.lineNum++
	return &LogLine{
		Content: cleanLine(text),
		Source:  s.name,
		LineNum: s.lineNum,
	}, nil
}

// Name returns the name reported for every line.
func (s *ReaderSource) Name() string {
	return s.name
}

// Close is a no-op; the caller owns the reader.
func (s *ReaderSource) Close() error {
	return nil
}

// cleanLine strips the line terminator and replaces invalid UTF-8.
func cleanLine(text string) string {
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	return strings.ToValidUTF8(text, "�")
}

// FileSource implements LogSource for a single log file. Files whose name
// ends in .gz are decompressed transparently.
type FileSource struct {
	path string

	file   *os.File
	gz     *gzip.Reader
	reader *ReaderSource
}

// NewFileSource creates a LogSource for path. The file is opened on the
// first call to Next.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// IsGzip reports whether path is treated as gzip-compressed.
func IsGzip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gz")
}

// Next returns the next line of the file.
// Returns io.EOF when the file is exhausted.
func (s *FileSource) Next(ctx context.Context) (*LogLine, error) {
	if s.reader == nil {
		if err := s.open(); err != nil {
			return nil, err
		}
	}
	return s.reader.Next(ctx)
}

// Name returns the file path.
func (s *FileSource) Name() string {
	return s.path
}

// Close releases the file handle and decompressor.
func (s *FileSource) Close() error {
	var firstErr error
	if s.gz != nil {
		firstErr = s.gz.Close()
		s.gz = nil
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.file = nil
	}
	return firstErr
}

func (s *FileSource) open() error {
	f, err := os.Open(s.path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, s.path)
		}
		return fmt.Errorf("opening log file %s: %w", s.path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return fmt.Errorf("%w: %s is a directory", ErrInputNotFound, s.path)
	}

	s.file = f
	var r io.Reader = f
	if IsGzip(s.path) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			s.file = nil
			return fmt.Errorf("opening gzip stream %s: %w", s.path, err)
		}
		s.gz = gz
		r = gz
	}

	s.reader = NewReaderSource(r, s.path)
	return nil
}
