// Command ecmafront is the CLI entry point for the ecmafront tokenizer and
// parser.
//
// Usage:
//
//	ecmafront tokens <file> [--json]   Print tokens
//	ecmafront parse  <file> [--json]   Print AST
//	ecmafront repl                     Start interactive REPL
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "tokens":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(1)
		}
		source := readFile(os.Args[2])
		cmdTokens(source, hasFlag("--json"))
	case "parse":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(1)
		}
		source := readFile(os.Args[2])
		cmdParse(source, hasFlag("--json"))
	case "repl":
		cmdRepl()
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  ecmafront tokens <file> [--json]   Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  ecmafront parse  <file> [--json]   Parse and print the AST")
	fmt.Fprintln(os.Stderr, "  ecmafront repl                     Start interactive REPL")
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(source)
}

func hasFlag(flag string) bool {
	for _, arg := range os.Args[3:] {
		if arg == flag {
			return true
		}
	}
	return false
}
