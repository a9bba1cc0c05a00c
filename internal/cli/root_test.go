package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const accessLine = `127.0.0.1 - - [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326 "-" "curl/8.0"`

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "hitlog" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Error("Missing persistent flag: config")
	}

	for _, name := range []string{"analyze", "detect", "diagnose", "validate", "version"} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("Missing subcommand: %s", name)
		}
	}
}

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "access.log")
	if err := os.WriteFile(logPath, []byte(accessLine+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name      string
		ctx       context.Context
		args      []string
		want      int
		wantInErr string
	}{
		{"success", context.Background(), []string{"analyze", "-q", "-d", outDir, logPath}, ExitOK, ""},
		{"missing input", context.Background(), []string{"analyze", "-q", "-d", outDir, filepath.Join(dir, "nope.log")}, ExitError, "Error:"},
		{"unknown command", context.Background(), []string{"frobnicate"}, ExitError, "unknown command"},
		{"canceled", canceled, []string{"analyze", "-q", "-d", outDir, logPath}, ExitCanceled, "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			got := Run(tt.ctx, tt.args, &stdout, &stderr)
			if got != tt.want {
				t.Errorf("Run() = %d, want %d (stderr: %s)", got, tt.want, stderr.String())
			}
			if tt.wantInErr != "" && !strings.Contains(stderr.String(), tt.wantInErr) {
				t.Errorf("stderr missing %q: %s", tt.wantInErr, stderr.String())
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if got := Run(context.Background(), []string{"version"}, &stdout, &stderr); got != ExitOK {
		t.Fatalf("Run() = %d", got)
	}
	if !strings.HasPrefix(stdout.String(), "hitlog ") {
		t.Errorf("got %q", stdout.String())
	}
}
