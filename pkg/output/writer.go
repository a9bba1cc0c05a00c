package output

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputDir is where reports are written unless configured otherwise.
const DefaultOutputDir = "Results"

// ReportPath returns <outputDir>/<base-without-ext>_analysis<ext> for source.
// Only the last extension is removed, so "access.log.gz" yields
// "access.log_analysis.txt".
func ReportPath(outputDir, source, ext string) string {
	base := filepath.Base(source)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, name+"_analysis"+ext)
}

// WriteReport renders report with f and saves it under outputDir.
// The report is rendered in memory first and moved into place with a
// rename, so a failed or cancelled write never leaves a partial file.
// Returns the path written.
func WriteReport(ctx context.Context, f Formatter, report *Report, outputDir string) (string, error) {
	var buf bytes.Buffer
	if err := f.Format(ctx, report, &buf); err != nil {
		return "", fmt.Errorf("formatting report: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := ReportPath(outputDir, report.Metadata.Source, f.Extension())
	if err := atomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}

	return path, nil
}

// atomicWriteFile writes data to a temporary file in the target directory
// and renames it over filename.
func atomicWriteFile(filename string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), ".report-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(perm); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpFile.Name(), filename)
}
