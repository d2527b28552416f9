package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/metrics"
)

// Shells lists the shells GenerateCompletion supports.
var Shells = []string{"bash", "zsh", "fish"}

// flagSpec describes a flag for completion scripts.
type flagSpec struct {
	long   string
	short  string
	help   string
	values []string // suggestions; nil for booleans and free values
	arg    string   // value label, empty for booleans
	file   bool
	algo   bool
}

func completionFlags() []flagSpec {
	return []flagSpec{
		{long: "help", short: "h", help: "Show help"},
		{long: "version", short: "V", help: "Show version information"},
		{short: "n", help: "Fibonacci index", arg: "index"},
		{long: "count", help: "Batch size", arg: "count"},
		{long: "policy", help: "Overflow policy", values: fibonacci.PolicyNames(), arg: "policy"},
		{long: "algo", help: "Algorithm", arg: "algorithm", algo: true},
		{long: "wasm", help: "WebAssembly guest module", arg: "file", file: true},
		{long: "workers", help: "Goroutines per batch", arg: "workers"},
		{long: "parallelism", help: "Calculators benchmarked at once", arg: "n"},
		{long: "timeout", help: "Maximum execution time", values: []string{"10s", "1m", "5m", "30m"}, arg: "duration"},
		{long: "gc-mode", help: "Garbage collector during benchmarks", values: metrics.GCModeNames(), arg: "mode"},
		{long: "batch", help: "Compute a batch"},
		{long: "bench", help: "Benchmark single and batch calls"},
		{long: "serve", help: "Run the HTTP host"},
		{long: "tui", help: "Benchmark dashboard"},
		{long: "interactive", short: "i", help: "Interactive REPL"},
		{long: "calibrate", help: "Measure the best worker count"},
		{long: "calibration-profile", help: "Calibration profile file", arg: "file", file: true},
		{long: "exact", help: "Also print the exact value"},
		{long: "quiet", short: "q", help: "Print only results"},
		{long: "verbose", short: "v", help: "Print additional details"},
		{long: "no-color", help: "Disable colored output"},
		{long: "output", short: "o", help: "Write the result to a file", arg: "file", file: true},
		{long: "addr", help: "HTTP listen address", arg: "address"},
		{long: "cors-origins", help: "Origins allowed by CORS", arg: "origins"},
		{long: "max-batch", help: "Largest batch accepted over HTTP", arg: "count"},
		{long: "log-level", help: "Log level", values: []string{"debug", "info", "warn", "error"}, arg: "level"},
		{long: "log-format", help: "Log format", values: []string{"json", "console", "text"}, arg: "format"},
		{long: "config", help: "YAML configuration file", arg: "file", file: true},
		{long: "completion", help: "Print a completion script", values: Shells, arg: "shell"},
	}
}

// GenerateCompletion writes a completion script for shell. algorithms are
// the registered calculator names; "all" and "wasm" are added.
func GenerateCompletion(out io.Writer, shell string, algorithms []string) error {
	algos := strings.Join(append(append([]string{}, algorithms...), fibonacci.AlgoWasm, fibonacci.AlgoAll), " ")
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(algos)
	case "zsh":
		script = zshCompletion(algos)
	case "fish":
		script = fishCompletion(algos)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: %s)", shell, strings.Join(Shells, ", "))
	}
	if _, err := io.WriteString(out, script); err != nil {
		return fmt.Errorf("completion %s generation failed: %w", shell, err)
	}
	return nil
}

func (f flagSpec) names() []string {
	var names []string
	if f.long != "" {
		names = append(names, "--"+f.long)
	}
	if f.short != "" {
		names = append(names, "-"+f.short)
	}
	return names
}

func bashCompletion(algos string) string {
	var opts []string
	var cases strings.Builder
	for _, f := range completionFlags() {
		opts = append(opts, f.names()...)
		var body string
		switch {
		case f.algo:
			body = `COMPREPLY=( $(compgen -W "${algorithms}" -- "${cur}") )`
		case f.file:
			body = `COMPREPLY=( $(compgen -f -- "${cur}") )`
		case len(f.values) > 0:
			body = fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.values, " "))
		default:
			continue
		}
		fmt.Fprintf(&cases, "        %s)\n            %s\n            return 0\n            ;;\n", strings.Join(f.names(), "|"), body)
	}

	return fmt.Sprintf(`# Bash completion script for fibengine
# Add this to your ~/.bashrc or ~/.bash_completion

_fibengine_completions() {
    local cur prev opts algorithms
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="%s"
    algorithms="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _fibengine_completions fibengine
`, strings.Join(opts, " "), algos, cases.String())
}

func zshCompletion(algos string) string {
	var args []string
	for _, f := range completionFlags() {
		suffix := ""
		switch {
		case f.file:
			suffix = fmt.Sprintf(":%s:_files", f.arg)
		case f.algo:
			suffix = fmt.Sprintf(":%s:($algorithms)", f.arg)
		case len(f.values) > 0:
			suffix = fmt.Sprintf(":%s:(%s)", f.arg, strings.Join(f.values, " "))
		case f.arg != "":
			suffix = fmt.Sprintf(":%s:", f.arg)
		}
		switch {
		case f.long != "" && f.short != "":
			args = append(args, fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'", f.short, f.long, f.short, f.long, f.help, suffix))
		case f.long != "":
			args = append(args, fmt.Sprintf("        '--%s[%s]%s'", f.long, f.help, suffix))
		default:
			args = append(args, fmt.Sprintf("        '-%s[%s]%s'", f.short, f.help, suffix))
		}
	}

	return fmt.Sprintf(`#compdef fibengine

# Zsh completion script for fibengine
# Place this file in $fpath as _fibengine

_fibengine() {
    local -a algorithms
    algorithms=(%s)

    _arguments -s \
%s
}

_fibengine "$@"
`, algos, strings.Join(args, " \\\n"))
}

func fishCompletion(algos string) string {
	lines := []string{
		"# Fish completion script for fibengine",
		"# Add this to ~/.config/fish/completions/fibengine.fish",
		"",
		"complete -c fibengine -f",
	}
	for _, f := range completionFlags() {
		parts := []string{"complete -c fibengine"}
		if f.short != "" {
			parts = append(parts, "-s "+f.short)
		}
		if f.long != "" {
			parts = append(parts, "-l "+f.long)
		}
		parts = append(parts, fmt.Sprintf("-d '%s'", f.help))
		switch {
		case f.file:
			parts = append(parts, "-rF")
		case f.algo:
			parts = append(parts, fmt.Sprintf("-xa '%s'", algos))
		case len(f.values) > 0:
			parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.values, " ")))
		case f.arg != "":
			parts = append(parts, "-x")
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n") + "\n"
}
