package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"ecmafront/internal/ast"
	"ecmafront/internal/parser"
)

// cmdParse parses source as a full program and prints the resulting AST, or
// the parse error in red if parsing failed.
func cmdParse(source string, jsonMode bool) {
	file, err := parser.New(source).ParseSourceFile()
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if jsonMode {
		printJSON(ast.NodeToMap(file))
		return
	}
	printASTText(file)
}

// printASTText prints one line per top-level statement of the source file
// (its index and Go node type), used when --json is not requested. Nested
// nodes are not printed.
func printASTText(file *ast.SourceFile) {
	for i, stmt := range file.Body {
		fmt.Printf("[%d] %T\n", i, stmt)
	}
}
