package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/hashprobe/internal/oracle"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// Every generator reads flagRegistry, so a new flag only needs an entry there.
type FlagCompletion struct {
	Long      string   // long flag name without dashes
	Short     string   // short alias without dash
	Help      string   // description text
	Values    []string // suggested values (nil = boolean or free-form)
	ValueName string   // label of the value in zsh
	IsFile    bool     // the value is a file path
	IsOracle  bool     // the value is an executable or a builtin oracle spec
}

var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Short: "n", Help: "Size of the input space", ValueName: "count"},
	{Long: "workers", Short: "p", Help: "Number of concurrent workers", Values: []string{"1", "2", "4", "8", "16"}, ValueName: "count"},
	{Long: "oracle", Help: "Hash oracle executable or builtin spec", IsOracle: true, ValueName: "oracle"},
	{Long: "probe-timeout", Help: "Time limit for one oracle invocation", Values: []string{"1s", "5s", "10s", "30s"}, ValueName: "duration"},
	{Long: "timeout", Help: "Time limit for the whole run", Values: []string{"10m", "30m", "1h", "2h"}, ValueName: "duration"},
	{Long: "ignore-exit-code", Help: "Accept oracle output regardless of exit status"},
	{Long: "fail-fast", Help: "Abort on the first probe failure"},
	{Long: "fail-on-collision", Help: "Exit with status 3 when collisions are found"},
	{Long: "progress-every", Help: "Inputs between progress updates", ValueName: "count"},
	{Long: "output", Short: "o", Help: "Write the JSON report to a file", IsFile: true, ValueName: "file"},
	{Long: "quiet", Short: "q", Help: "Print only the summary line"},
	{Long: "verbose", Short: "v", Help: "List every collision"},
	{Long: "tui", Help: "Interactive dashboard"},
	{Long: "metrics-addr", Help: "Serve Prometheus metrics on this address", ValueName: "address"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "env-file", Help: "Load environment from a dotenv file", IsFile: true, ValueName: "file"},
	{Long: "bench", Help: "Benchmark oracle latency"},
	{Long: "bench-lengths", Help: "Comma-separated benchmark input lengths", ValueName: "lengths"},
	{Long: "bench-trials", Help: "Oracle invocations per length", ValueName: "count"},
	{Long: "seed", Help: "Benchmark RNG seed", ValueName: "seed"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell"},
}

// builtinOracleSpecs lists the builtin oracle specs offered for -oracle.
func builtinOracleSpecs() []string {
	algos := oracle.BuiltinAlgorithms()
	specs := make([]string, 0, len(algos))
	for _, a := range algos {
		specs = append(specs, oracle.BuiltinPrefix+a)
	}
	return specs
}

// GenerateCompletion writes a completion script for shell to out.
func GenerateCompletion(out io.Writer, shell string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out)
	case "zsh":
		return generateZshCompletion(out)
	case "fish":
		return generateFishCompletion(out)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
}

// flagNames returns the dashed spellings of a flag. Go's flag package
// accepts one or two dashes; completions offer the long form with two.
func flagNames(f FlagCompletion) []string {
	var names []string
	if f.Long != "" {
		names = append(names, "--"+f.Long)
	}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func generateBashCompletion(out io.Writer) error {
	var opts []string
	var cases strings.Builder
	for _, f := range flagRegistry {
		names := flagNames(f)
		opts = append(opts, names...)

		var body string
		switch {
		case f.IsFile:
			body = `COMPREPLY=( $(compgen -f -- "${cur}") )`
		case f.IsOracle:
			body = `COMPREPLY=( $(compgen -W "${builtins}" -- "${cur}") $(compgen -f -- "${cur}") )`
		case len(f.Values) > 0:
			body = fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " "))
		case f.ValueName != "":
			body = "return 0"
		default:
			continue
		}
		fmt.Fprintf(&cases, "        %s)\n            %s\n            return 0\n            ;;\n", strings.Join(names, "|"), body)
	}

	_, err := fmt.Fprintf(out, `# Bash completion script for hashprobe
# Add this to your ~/.bashrc or ~/.bash_completion

_hashprobe_completions() {
    local cur prev opts builtins
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="%s"
    builtins="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _hashprobe_completions hashprobe
`, strings.Join(opts, " "), strings.Join(builtinOracleSpecs(), " "), cases.String())
	if err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

func generateZshCompletion(out io.Writer) error {
	args := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	_, err := fmt.Fprintf(out, `#compdef hashprobe

# Zsh completion script for hashprobe
# Add this to your ~/.zshrc or place in $fpath

_hashprobe() {
    local -a builtins
    builtins=(%s)

    _arguments -s \
%s
}

_hashprobe "$@"
`, strings.Join(builtinOracleSpecs(), " "), strings.Join(args, " \\\n"))
	if err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats a single flag as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsOracle:
		valueSuffix = fmt.Sprintf(":%s:{_files; compadd -a builtins}", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	switch {
	case f.Long != "" && f.Short != "":
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	case f.Long != "":
		return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
	default:
		return fmt.Sprintf("        '-%s[%s]%s'", f.Short, f.Help, valueSuffix)
	}
}

func generateFishCompletion(out io.Writer) error {
	lines := []string{
		"# Fish completion script for hashprobe",
		"# Add this to ~/.config/fish/completions/hashprobe.fish",
		"",
		"complete -c hashprobe -f",
	}
	builtins := strings.Join(builtinOracleSpecs(), " ")
	for _, f := range flagRegistry {
		lines = append(lines, fishCompleteLine(f, builtins))
	}
	lines = append(lines, "")

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats a single flag as a fish complete command.
func fishCompleteLine(f FlagCompletion, builtins string) string {
	parts := []string{"complete -c hashprobe"}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	if f.Long != "" {
		parts = append(parts, "-l "+f.Long)
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case f.IsOracle:
		parts = append(parts, fmt.Sprintf("-rFa '%s'", builtins))
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}
