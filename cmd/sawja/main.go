// cmd/sawja/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"sawja/internal/classfile"
	"sawja/internal/classpath"
	"sawja/internal/diagnostics"
	"sawja/internal/jsonclass"
	"sawja/internal/nativestubs"
	"sawja/internal/persist"
	"sawja/internal/rta"
)

const VERSION = "0.1.0"

var (
	BuildDate = time.Now().Format("2006-01-02")
	GitCommit = "unknown"
)

// Command aliases mapping, teacher-style.
var commandAliases = map[string]string{
	"a": "analyze",
	"g": "callgraph",
	"cp": "classpath",
}

var allCommands = []string{
	"analyze", "callgraph", "help", "version", "completion",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
		args[0] = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		if len(args) > 1 {
			showCommandHelp(args[1])
		} else {
			showUsage()
		}
		return
	}

	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		showVersion()
		return
	}

	if cmd == "completion" {
		if len(args) < 2 {
			fmt.Println("Usage: sawja completion <bash|zsh|fish>")
			os.Exit(1)
		}
		generateCompletion(args[1])
		return
	}

	switch cmd {
	case "analyze":
		if err := analyzeCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "callgraph":
		if err := callgraphCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	default:
		suggestCommand(cmd)
	}
}

// analyzeFlags is the small hand-rolled flag set both subcommands
// share, mirroring the teacher's constructor-injected Config (§4.7):
// no package-level flag.Parse state, every option threaded explicitly.
type analyzeFlags struct {
	classpath    string
	entryClass   string
	entryMethod  string
	entryDesc    string
	nativeStubs  string
	cacheDB      string
	verbose      bool
}

func parseAnalyzeFlags(args []string) (*analyzeFlags, error) {
	f := &analyzeFlags{entryMethod: "main", entryDesc: "([Ljava/lang/String;)V"}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-classpath", "-cp":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-classpath requires a value")
			}
			f.classpath = args[i]
		case "-entry":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-entry requires a value")
			}
			f.entryClass = args[i]
		case "-native-stubs":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-native-stubs requires a value")
			}
			f.nativeStubs = args[i]
		case "-cache":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-cache requires a value")
			}
			f.cacheDB = args[i]
		case "-v", "-verbose":
			f.verbose = true
		default:
			return nil, fmt.Errorf("unrecognized flag %q", args[i])
		}
	}
	if f.classpath == "" {
		return nil, fmt.Errorf("-classpath is required")
	}
	if f.entryClass == "" {
		return nil, fmt.Errorf("-entry is required (e.g. -entry com/example/Main)")
	}
	return f, nil
}

func runRTA(f *analyzeFlags) (*rta.Program, *diagnostics.Reporter, error) {
	cp, err := classpath.Open(f.classpath, jsonclass.Decode)
	if err != nil {
		return nil, nil, err
	}
	defer cp.Close()

	minLevel := diagnostics.SeverityWarn
	if f.verbose {
		minLevel = diagnostics.SeverityDebug
	}
	reporter := diagnostics.NewReporter(os.Stderr, minLevel)

	var stubs *nativestubs.Table
	if f.nativeStubs != "" {
		sf, err := os.Open(f.nativeStubs)
		if err != nil {
			return nil, nil, err
		}
		defer sf.Close()
		stubs, err = nativestubs.Load(sf)
		if err != nil {
			return nil, nil, err
		}
	}

	entryPoints := append([]rta.EntryPoint{}, rta.BootstrapEntryPoints...)
	entryPoints = append(entryPoints, rta.EntryPoint{
		Class: classfile.ClassName(f.entryClass),
		Sig:   classfile.MethodSignature{Name: f.entryMethod, Descriptor: f.entryDesc},
	})

	opts := rta.Options{
		ParseNatives: stubs != nil,
		Natives:      stubs,
		Diagnostics:  reporter,
	}

	prog, err := rta.Run(cp, entryPoints, opts)
	if err != nil {
		return nil, nil, err
	}
	return prog, reporter, nil
}

func analyzeCommand(args []string) error {
	f, err := parseAnalyzeFlags(args)
	if err != nil {
		fmt.Println("Usage: sawja analyze -classpath <path> -entry <Class> [-native-stubs <file>] [-cache <db>] [-v]")
		return err
	}

	var store *persist.SQLiteStore
	var cacheKey string
	if f.cacheDB != "" {
		store, err = persist.OpenSQLiteStore(f.cacheDB)
		if err != nil {
			return err
		}
		defer store.Close()
		cacheKey = persist.HashKey("classpath:"+f.classpath, "entry:"+f.entryClass+"."+f.entryMethod+f.entryDesc)
		if snap, ok, err := store.Get(cacheKey); err == nil && ok {
			fmt.Printf("reused cached fixpoint from run %s (%d edges, %d instantiated classes)\n",
				snap.RunID, len(snap.Edges), len(snap.InstantiatedNames))
			return nil
		}
	}

	prog, _, err := runRTA(f)
	if err != nil {
		return err
	}

	fmt.Printf("parsed methods:      %d\n", len(prog.ParsedMethods()))
	fmt.Printf("native methods:      %d\n", len(prog.NativeMethods()))
	fmt.Printf("callgraph edges:     %d\n", len(prog.Edges()))

	if store != nil {
		runID := persist.NewRunID()
		snap := persist.NewSnapshot(runID, prog)
		if err := store.Put(cacheKey, snap); err != nil {
			return err
		}
		fmt.Printf("cached fixpoint as run %s\n", runID)
	}
	return nil
}

func callgraphCommand(args []string) error {
	f, err := parseAnalyzeFlags(args)
	if err != nil {
		fmt.Println("Usage: sawja callgraph -classpath <path> -entry <Class> [-native-stubs <file>] [-v]")
		return err
	}

	prog, _, err := runRTA(f)
	if err != nil {
		return err
	}

	for _, e := range prog.Edges() {
		fmt.Printf("%s.%s -> %s.%s (pc %d)\n", e.CallerClass, e.CallerSig, e.CalleeClass, e.CalleeSig, e.PC)
	}
	return nil
}

func showUsage() {
	fmt.Println("sawja - Java bytecode static-analysis toolkit")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sawja analyze -classpath <path> -entry <Class>     Run RTA, print summary     (alias: a)")
	fmt.Println("  sawja callgraph -classpath <path> -entry <Class>   Run RTA, print call edges  (alias: g)")
	fmt.Println()
	fmt.Println("Flags (analyze, callgraph):")
	fmt.Println("  -classpath <path>       Colon/semicolon-separated directories or jars  (alias: -cp)")
	fmt.Println("  -entry <Class>          Entry point class (method defaults to main([Ljava/lang/String;)V))")
	fmt.Println("  -native-stubs <file>    JSON native-method stub table")
	fmt.Println("  -cache <db>             SQLite fixpoint cache (analyze only)")
	fmt.Println("  -v                      Verbose diagnostics")
	fmt.Println()
	fmt.Println("Shell Integration:")
	fmt.Println("  sawja completion bash     Generate bash completion")
	fmt.Println("  sawja completion zsh      Generate zsh completion")
	fmt.Println("  sawja completion fish     Generate fish completion")
	fmt.Println()
	fmt.Println("Help:")
	fmt.Println("  sawja help <command>      Show detailed help for a command")
	fmt.Println("  sawja --version           Show version info")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  sawja analyze -cp ./classes -entry com/example/Main")
	fmt.Println("  sawja g -cp app.jar -entry com/example/Main -v")
}

func showCommandHelp(command string) {
	if alias, ok := commandAliases[command]; ok {
		command = alias
	}
	switch command {
	case "analyze":
		fmt.Println("sawja analyze -classpath <path> -entry <Class> [-native-stubs <file>] [-cache <db>] [-v]")
		fmt.Println()
		fmt.Println("Runs Rapid Type Analysis to a fixpoint and prints a summary: parsed")
		fmt.Println("method count, native method count, and call-graph edge count. With")
		fmt.Println("-cache, a completed fixpoint is stored and a later run against the")
		fmt.Println("same classpath and entry point is served from the cache instead of")
		fmt.Println("re-running the worklist.")
	case "callgraph":
		fmt.Println("sawja callgraph -classpath <path> -entry <Class> [-native-stubs <file>] [-v]")
		fmt.Println()
		fmt.Println("Runs RTA and prints every call-graph edge as \"caller -> callee (pc N)\".")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showUsage()
	}
}

func showVersion() {
	fmt.Printf("sawja v%s\n", VERSION)
	fmt.Printf("Build Date: %s\n", BuildDate)
	if out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
		GitCommit = strings.TrimSpace(string(out))
	}
	if GitCommit != "unknown" {
		fmt.Printf("Git Commit: %s\n", GitCommit)
	}
}

// suggestCommand suggests similar commands when an unknown command is
// entered, via Levenshtein distance against allCommands.
func suggestCommand(cmd string) {
	fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n", cmd)

	suggestions := findSimilarCommands(cmd, allCommands, 3)
	if len(suggestions) > 0 {
		fmt.Fprintf(os.Stderr, "\nDid you mean one of these?\n")
		for _, s := range suggestions {
			alias := ""
			for a, full := range commandAliases {
				if full == s {
					alias = fmt.Sprintf(" (alias: %s)", a)
					break
				}
			}
			fmt.Fprintf(os.Stderr, "  sawja %s%s\n", s, alias)
		}
	}
	fmt.Fprintf(os.Stderr, "\nRun 'sawja help' to see all available commands\n")
	os.Exit(1)
}

func findSimilarCommands(input string, commands []string, maxDistance int) []string {
	var similar []string
	for _, c := range commands {
		if levenshteinDistance(input, c) <= maxDistance {
			similar = append(similar, c)
		}
	}
	return similar
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			matrix[i][j] = minOf3(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}
	return matrix[len(s1)][len(s2)]
}

func minOf3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

func generateCompletion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Printf("Unsupported shell: %s (supported: bash, zsh, fish)\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_sawja_completion() {
    local cur prev
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    case "${prev}" in
        sawja)
            COMPREPLY=($(compgen -W "analyze callgraph help version completion" -- ${cur}))
            ;;
        analyze|callgraph)
            COMPREPLY=($(compgen -W "-classpath -entry -native-stubs -cache -v" -- ${cur}))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- ${cur}))
            ;;
    esac
}
complete -F _sawja_completion sawja
`

const zshCompletion = `#compdef sawja
_arguments \
  '1: :(analyze callgraph help version completion)' \
  '*: :(-classpath -entry -native-stubs -cache -v)'
`

const fishCompletion = `complete -c sawja -n "__fish_use_subcommand" -a "analyze callgraph help version completion"
complete -c sawja -n "__fish_seen_subcommand_from analyze callgraph" -l classpath
complete -c sawja -n "__fish_seen_subcommand_from analyze callgraph" -l entry
complete -c sawja -n "__fish_seen_subcommand_from analyze callgraph" -l native-stubs
complete -c sawja -n "__fish_seen_subcommand_from analyze" -l cache
`
