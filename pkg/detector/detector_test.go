package detector

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/ccollicutt/hitlog/pkg/parser"
)

const (
	combinedLine = `127.0.0.1 - - [10/Oct/2000:13:55:36 -0700] "GET /index.html HTTP/1.1" 200 2326 "-" "curl/8.0"`
	commonLine   = `127.0.0.1 - frank [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326`
	vhostLine    = `example.com 127.0.0.1 - - [10/Oct/2000:13:55:36 -0700] "GET / HTTP/1.1" 200 10 "-" "curl/8.0"`
)

func TestDetector_DetectFromLines_Combined(t *testing.T) {
	lines := []string{combinedLine, combinedLine, combinedLine}

	d := New()
	result := d.DetectFromLines(lines)

	if !result.HasMatch() {
		t.Fatal("Expected to detect a format")
	}

	best := result.BestMatch()
	if best.Format.Name != "combined" {
		t.Errorf("Expected combined, got %s", best.Format.Name)
	}

	if best.Confidence != 1.0 {
		t.Errorf("Expected 100%% confidence, got %.1f%%", best.Confidence*100)
	}

	if best.ParsedTime.IsZero() {
		t.Error("Expected sample timestamp to be parsed")
	}
}

func TestDetector_DetectFromLines_VHost(t *testing.T) {
	d := New()
	result := d.DetectFromLines([]string{vhostLine})

	best := result.BestMatch()
	if best == nil || best.Format.Name != "combined_vhost" {
		t.Fatalf("Expected combined_vhost, got %+v", best)
	}
}

func TestDetector_DetectFromLines_MixedFormats(t *testing.T) {
	lines := []string{
		commonLine,
		combinedLine,
		commonLine,
		"not a log line",
		commonLine,
	}

	d := New()
	result := d.DetectFromLines(lines)

	if len(result.Matches) != 2 {
		t.Fatalf("Expected 2 matching formats, got %d", len(result.Matches))
	}
	if result.Matches[0].Format.Name != "common" || result.Matches[0].MatchCount != 3 {
		t.Errorf("Expected common x3 first, got %s x%d", result.Matches[0].Format.Name, result.Matches[0].MatchCount)
	}
	if result.Matches[1].Format.Name != "combined" {
		t.Errorf("Expected combined second, got %s", result.Matches[1].Format.Name)
	}
	if result.SampledLines != 5 || result.ParsedLines != 4 || result.UnparsedLines != 1 {
		t.Errorf("Sampled/Parsed/Unparsed = %d/%d/%d, want 5/4/1",
			result.SampledLines, result.ParsedLines, result.UnparsedLines)
	}
	if result.UnparsedLine != "not a log line" {
		t.Errorf("UnparsedLine = %q", result.UnparsedLine)
	}
	if got := result.UnparsedShare(); got != 0.2 {
		t.Errorf("UnparsedShare() = %v, want 0.2", got)
	}
}

func TestDetector_DetectFromLines_TiesKeepClassifierOrder(t *testing.T) {
	d := New()
	result := d.DetectFromLines([]string{commonLine, combinedLine})

	if result.Matches[0].Format.Name != "combined" {
		t.Errorf("Expected combined to win the tie, got %s", result.Matches[0].Format.Name)
	}
}

func TestDetector_DetectFromLines_NoMatch(t *testing.T) {
	lines := []string{
		"This is a log line without a request",
		"Another line with no format",
	}

	d := New()
	result := d.DetectFromLines(lines)

	if result.HasMatch() {
		t.Error("Expected no match")
	}
	if result.BestMatch() != nil {
		t.Error("Expected nil BestMatch")
	}
	if result.UnparsedShare() != 1 {
		t.Errorf("UnparsedShare() = %v, want 1", result.UnparsedShare())
	}
}

func TestDetector_DetectFromLines_EmptyInput(t *testing.T) {
	d := New()
	result := d.DetectFromLines(nil)

	if result.HasMatch() {
		t.Error("Expected no match for empty input")
	}
	if result.SampledLines != 0 {
		t.Errorf("Expected 0 sampled lines, got %d", result.SampledLines)
	}
	if result.UnparsedShare() != 0 {
		t.Errorf("UnparsedShare() = %v, want 0", result.UnparsedShare())
	}
}

func TestDetector_DetectFromLines_SkipsBlankLines(t *testing.T) {
	d := New()
	result := d.DetectFromLines([]string{"", "   ", combinedLine})

	if result.SampledLines != 1 {
		t.Errorf("Expected 1 sampled line, got %d", result.SampledLines)
	}
}

func TestDetector_DetectFromLines_BadTimestamp(t *testing.T) {
	line := `127.0.0.1 - - [yesterday] "GET / HTTP/1.1" 200 1`

	d := New()
	result := d.DetectFromLines([]string{line})

	best := result.BestMatch()
	if best == nil {
		t.Fatal("Expected the line to classify despite its timestamp")
	}
	if best.BadTimes != 1 {
		t.Errorf("BadTimes = %d, want 1", best.BadTimes)
	}
	if result.TimestampNote == "" {
		t.Error("Expected a timestamp note")
	}
}

func TestDetector_WithSampleSize(t *testing.T) {
	d := New(WithSampleSize(50))
	if d.sampleSize != 50 {
		t.Errorf("Expected sample size 50, got %d", d.sampleSize)
	}
}

func TestDetector_WithSampleSize_Invalid(t *testing.T) {
	d := New(WithSampleSize(-1))
	if d.sampleSize != DefaultSampleSize {
		t.Errorf("Expected default sample size %d, got %d", DefaultSampleSize, d.sampleSize)
	}
}

func TestDetector_WithClassifier(t *testing.T) {
	var only []*parser.Format
	for _, f := range parser.DefaultFormats() {
		if f.Name == "common" {
			only = append(only, f)
		}
	}

	d := New(WithClassifier(parser.NewClassifierWithFormats(only)))
	result := d.DetectFromLines([]string{combinedLine})

	if best := result.BestMatch(); best == nil || best.Format.Name != "common" {
		t.Errorf("Expected common with restricted classifier, got %+v", best)
	}
}

func TestDetector_DetectFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "access.log")

	content := strings.Repeat(combinedLine+"\n", 10) + "\n" + commonLine + "\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	d := New(WithSampleSize(5))
	result, err := d.DetectFromFile(context.Background(), tmpFile)
	if err != nil {
		t.Fatalf("DetectFromFile failed: %v", err)
	}

	if result.SampledLines != 5 {
		t.Errorf("Expected 5 sampled lines, got %d", result.SampledLines)
	}

	best := result.BestMatch()
	if best == nil || best.Format.Name != "combined" {
		t.Fatalf("Expected combined, got %+v", best)
	}
}

func TestDetector_DetectFromFile_Gzip(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "access.log.gz")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(commonLine + "\n" + commonLine + "\n")); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := os.WriteFile(tmpFile, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	result, err := New().DetectFromFile(context.Background(), tmpFile)
	if err != nil {
		t.Fatalf("DetectFromFile failed: %v", err)
	}
	if best := result.BestMatch(); best == nil || best.MatchCount != 2 {
		t.Errorf("Expected 2 common matches, got %+v", best)
	}
}

func TestDetector_DetectFromFile_NotFound(t *testing.T) {
	d := New()
	_, err := d.DetectFromFile(context.Background(), "/nonexistent/file.log")
	if err == nil {
		t.Fatal("Expected error for non-existent file")
	}
	if !errors.Is(err, parser.ErrInputNotFound) {
		t.Errorf("Expected ErrInputNotFound, got %v", err)
	}
}
