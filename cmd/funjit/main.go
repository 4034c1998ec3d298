package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/funvibe/funjit/internal/config"
	"github.com/funvibe/funjit/internal/inspect"
	"github.com/funvibe/funjit/internal/native"
	"github.com/funvibe/funjit/internal/protosig"
	"github.com/funvibe/funjit/internal/signature"

	"github.com/mattn/go-isatty"
)

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			// Print stack trace for debugging
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if handleHelp() {
		return
	}

	if handleInspect() {
		return
	}

	if handleProto() {
		return
	}

	if handleCheck() {
		return
	}

	if handleTypes() {
		return
	}

	if len(os.Args) >= 2 {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
	}
	printUsage(os.Stderr)
	os.Exit(1)
}

func printUsage(w *os.File) {
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s inspect [-config funjit.yaml] [-v] <package patterns>\n", os.Args[0])
	fmt.Fprintf(w, "      Derive the native signature of every exported function.\n")
	fmt.Fprintf(w, "  %s proto [-I dir] [-v] <file.proto> [file2.proto...]\n", os.Args[0])
	fmt.Fprintf(w, "      Translate the unary service methods of proto files.\n")
	fmt.Fprintf(w, "  %s check [funjit.yaml]\n", os.Args[0])
	fmt.Fprintf(w, "      Validate a configuration file and list every invalid entry.\n")
	fmt.Fprintf(w, "  %s types\n", os.Args[0])
	fmt.Fprintf(w, "      List the native scalar types and their Go equivalents.\n")
}

func handleHelp() bool {
	if len(os.Args) < 2 {
		return false
	}

	if os.Args[1] != "-help" && os.Args[1] != "--help" && os.Args[1] != "help" {
		return false
	}

	printUsage(os.Stdout)
	return true
}

func handleInspect() bool {
	if len(os.Args) < 2 || os.Args[1] != "inspect" {
		return false
	}

	var (
		configPath string
		verbose    bool
		patterns   []string
	)
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-v" || arg == "--verbose":
			verbose = true
		case arg == "-config" || arg == "--config":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: -config requires a path")
				os.Exit(1)
			}
			i++
			configPath = args[i]
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "Unknown flag: %s\n", arg)
			os.Exit(1)
		default:
			patterns = append(patterns, arg)
		}
	}
	if len(patterns) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s inspect [-config funjit.yaml] [-v] <package patterns>\n", os.Args[0])
		os.Exit(1)
	}

	cfg := loadConfig(configPath)
	builder := signature.DefaultBuilder()
	if cfg != nil {
		verbose = verbose || cfg.Verbose
		var err error
		builder, err = cfg.Builder()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}

	report, err := inspect.Inspect(patterns, inspect.WithVerbose(verbose))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	failed := false
	for _, r := range report.Build(builder) {
		if r.Err != nil {
			fmt.Printf("%s %s.%s: %s\n", errMark(), r.Package, r.Name, r.Err)
			failed = true
			continue
		}
		fmt.Printf("%s %s.%s: %s\n", okMark(), r.Package, r.Name, r.Sig)
	}
	for _, s := range report.Skipped {
		fmt.Printf("-- %s.%s: skipped: %s\n", s.Package, s.Name, s.Reason)
	}

	if failed {
		os.Exit(1)
	}
	return true
}

func handleProto() bool {
	if len(os.Args) < 2 || os.Args[1] != "proto" {
		return false
	}

	var (
		verbose bool
		imports []string
		files   []string
	)
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-v" || arg == "--verbose":
			verbose = true
		case arg == "-I" || arg == "--import-path":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: -I requires a directory")
				os.Exit(1)
			}
			i++
			imports = append(imports, args[i])
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "Unknown flag: %s\n", arg)
			os.Exit(1)
		default:
			files = append(files, arg)
		}
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s proto [-I dir] [-v] <file.proto> [file2.proto...]\n", os.Args[0])
		os.Exit(1)
	}

	opts := []protosig.Option{protosig.WithVerbose(verbose)}
	if len(imports) > 0 {
		opts = append(opts, protosig.WithImportPaths(imports...))
	}

	for _, path := range files {
		fs, err := protosig.TranslateFile(path, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		for _, m := range fs.Methods {
			fmt.Printf("%s %s: %s\n", okMark(), m.FullName, m.Sig)
		}
		for _, s := range fs.Skipped {
			fmt.Printf("-- %s/%s: skipped: %s\n", s.Service, s.Method, s.Reason)
		}
	}
	return true
}

func handleCheck() bool {
	if len(os.Args) < 2 || os.Args[1] != "check" {
		return false
	}

	path := ""
	if len(os.Args) >= 3 {
		path = os.Args[2]
	} else {
		found, err := config.Find(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		if found == "" {
			fmt.Fprintln(os.Stderr, "No funjit.yaml found")
			os.Exit(1)
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if _, err := cfg.Builder(); err != nil {
		// A joined error carries one invalid entry per line.
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Printf("%s %s\n", errMark(), line)
		}
		os.Exit(1)
	}

	fmt.Printf("%s %s: %d mappings\n", okMark(), path, len(cfg.Mappings))
	return true
}

func handleTypes() bool {
	if len(os.Args) < 2 || os.Args[1] != "types" {
		return false
	}

	fmt.Println("Native scalar types:")
	fmt.Println()
	for _, name := range native.TypeNames() {
		t, _ := native.TypeByName(name)
		if goType, ok := native.GoEquivalent(t); ok {
			fmt.Printf("  %-12s %s\n", name, goType)
		} else {
			fmt.Printf("  %-12s -\n", name)
		}
	}
	fmt.Println()
	fmt.Println("Arrays are spelled []elem, e.g. []float64.")
	return true
}

// loadConfig resolves the inspect configuration: the explicit path when
// given, otherwise the nearest funjit.yaml walking up from the current
// directory. Returns nil when there is nothing to load.
func loadConfig(path string) *config.Config {
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		if found == "" {
			return nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// colorOut reports whether stdout wants ANSI color, following the
// NO_COLOR convention (https://no-color.org/).
var colorOut = func() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}()

func ansiWrap(code, s string) string {
	if !colorOut {
		return s
	}
	return code + s + "\033[0m"
}

func okMark() string {
	return ansiWrap("\033[32m", "ok")
}

func errMark() string {
	return ansiWrap("\033[31m", "err")
}
