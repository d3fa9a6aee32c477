package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"ecmafront/internal/parser"
)

// cmdRepl reads lines with readline (history, emacs-style editing),
// accumulates input until braces balance, parses each resulting chunk as a
// program, and prints the shape of the parsed statements. There is no
// evaluator here: parsing is the whole of this front end.
func cmdRepl() {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".ecmafront_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            color.GreenString("ecmafront> "),
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s %s\n\n",
		color.CyanString("ecmafront REPL"), color.New(color.Faint).Sprint("(type 'exit' or Ctrl+D to quit)"))

	var accumulated strings.Builder
	braceDepth := 0

	for {
		if braceDepth > 0 {
			rl.SetPrompt(color.New(color.Faint).Sprint("...       "))
		} else {
			rl.SetPrompt(color.GreenString("ecmafront> "))
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if braceDepth > 0 {
					accumulated.Reset()
					braceDepth = 0
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s\n", color.New(color.Faint).Sprint("(use 'exit' or Ctrl+D to quit)"))
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if braceDepth == 0 && strings.TrimSpace(line) == "exit" {
			break
		}

		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")

		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		source := accumulated.String()
		accumulated.Reset()

		if strings.TrimSpace(source) == "" {
			continue
		}

		file, err := parser.New(source).ParseSourceFile()
		if err != nil {
			color.New(color.FgRed, color.Bold).Fprintln(rl.Stderr(), err)
			continue
		}

		for i, stmt := range file.Body {
			fmt.Fprintf(rl.Stdout(), "[%d] %T\n", i, stmt)
		}
	}
}
