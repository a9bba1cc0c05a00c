package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDetectCommand(t *testing.T) {
	cmd := NewDetectCommand()

	if cmd.Use != "detect <log-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	for _, flag := range []string{"output", "sample", "all", "write-config"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestRunDetect_Text(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir, "access.log", combinedLine, combinedLine, garbageLine)

	stdout, _, err := execute(context.Background(), NewDetectCommand(), "detect", logPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Lines sampled: 3",
		"Lines recognized: 2",
		"(combined)",
		"First unrecognized line:",
		garbageLine,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunDetect_NoMatch(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir, "app.log", garbageLine, garbageLine)

	stdout, _, err := execute(context.Background(), NewDetectCommand(), "detect", logPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No access-log format detected.") {
		t.Errorf("expected no-match message:\n%s", stdout)
	}
}

func TestRunDetect_JSON(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir, "access.log", combinedLine, commonLine)

	stdout, _, err := execute(context.Background(), NewDetectCommand(), "detect", "-o", "json", "--all", logPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out JSONOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if out.SampledLines != 2 || out.ParsedLines != 2 {
		t.Errorf("got sampled=%d parsed=%d", out.SampledLines, out.ParsedLines)
	}
	if len(out.Matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(out.Matches), out.Matches)
	}
	if out.Matches[0].Pattern == "" {
		t.Error("match should carry its pattern")
	}
}

func TestRunDetect_UnknownOutput(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir, "access.log", combinedLine)

	_, _, err := execute(context.Background(), NewDetectCommand(), "detect", "-o", "xml", logPath)
	if err == nil {
		t.Fatal("expected error for unknown output format")
	}
}

func TestRunDetect_MissingFile(t *testing.T) {
	_, _, err := execute(context.Background(), NewDetectCommand(), "detect", "/nonexistent/access.log")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRunDetect_WriteConfig(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir, "access.log", combinedLine)
	cfgPath := filepath.Join(dir, "hitlog.yaml")

	stdout, _, err := execute(context.Background(), NewDetectCommand(), "detect", "-w", cfgPath, logPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Wrote starter config to: "+cfgPath) {
		t.Errorf("missing write confirmation:\n%s", stdout)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	// A second run refuses to overwrite.
	_, _, err = execute(context.Background(), NewDetectCommand(), "detect", "-w", cfgPath, logPath)
	if err == nil || !strings.Contains(err.Error(), "will not overwrite") {
		t.Errorf("expected overwrite refusal, got %v", err)
	}
}
