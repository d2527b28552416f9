package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildBinary compiles cmd/fibengine once per test run. go test runs in
// the package directory, so the module root is two levels up.
func buildBinary(t *testing.T) string {
	t.Helper()
	binName := "fibengine"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), binName)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/fibengine")
	cmd.Dir = filepath.Join("..", "..")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build fibengine: %v", err)
	}
	return binPath
}

func TestCLI_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end build in short mode")
	}
	binPath := buildBinary(t)
	profile := filepath.Join(t.TempDir(), "profile.json")

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring, case-insensitive
		exactOut string // whole output, when set
		wantCode int
	}{
		{name: "Basic Calculation", args: []string{"-n", "10"}, wantOut: "F(10) = 55"},
		{name: "Help", args: []string{"--help"}, wantOut: "usage"},
		{name: "All Algorithms Comparison", args: []string{"-n", "35", "--algo", "all"}, wantOut: "All valid results are consistent"},
		{name: "Quiet Mode", args: []string{"-n", "10", "--quiet"}, exactOut: "55\n"},
		{name: "Zero", args: []string{"-n", "0", "--quiet"}, exactOut: "0\n"},
		{name: "Largest Exact", args: []string{"-n", "47", "--algo", "iterative", "--quiet"}, exactOut: "2971215073\n"},
		{name: "Wraps Past 47", args: []string{"-n", "48", "--algo", "doubling", "--quiet"}, exactOut: "512559680\n"},
		{name: "Saturate", args: []string{"-n", "100", "--algo", "iterative", "--policy", "saturate", "--quiet"}, exactOut: "4294967295\n"},
		{name: "Checked Overflow", args: []string{"-n", "48", "--algo", "iterative", "--policy", "checked"}, wantOut: "Overflow", wantCode: 5},
		{name: "Batch", args: []string{"--batch", "--count", "4", "-n", "12", "--quiet"}, exactOut: "144 144 144 144\n"},
		{name: "Exact Value", args: []string{"-n", "100", "--algo", "iterative", "--exact"}, wantOut: "354224848179261915075"},
		{name: "Benchmark", args: []string{"--bench", "-n", "30", "--count", "1000", "--algo", "iterative"}, wantOut: "Benchmark"},
		{name: "Unknown Algorithm", args: []string{"--algo", "quantum"}, wantOut: "unknown algorithm", wantCode: 4},
		{name: "Index Out Of Range", args: []string{"-n", "4294967296"}, wantOut: "n must be at most", wantCode: 4},
		{
			name:     "Very Short Timeout",
			args:     []string{"--batch", "--count", "2000000", "-n", "100000", "--algo", "iterative", "--workers", "1", "--timeout", "1ms"},
			wantOut:  "Timeout",
			wantCode: 2,
		},
		{name: "Version Flag", args: []string{"--version"}, wantOut: "fibengine"},
		{name: "Fish Completion", args: []string{"--completion", "fish"}, wantOut: "complete -c fibengine -l policy"},
		{name: "Unsupported Shell", args: []string{"--completion", "tcsh"}, wantOut: "unsupported shell", wantCode: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--calibration-profile", profile}, tt.args...)
			if tt.name == "Version Flag" {
				args = tt.args
			}
			cmd := exec.Command(binPath, args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			code := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("running fibengine: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nOutput:\n%s", code, tt.wantCode, outStr)
			}

			if tt.exactOut != "" && outStr != tt.exactOut {
				t.Errorf("output = %q, want %q", outStr, tt.exactOut)
			}
			if tt.wantOut != "" && !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
			}
		})
	}
}
