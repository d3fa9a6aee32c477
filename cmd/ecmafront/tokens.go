package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"

	"ecmafront/internal/lexer"
	"ecmafront/internal/token"
)

var (
	colorKeyword = color.New(color.FgCyan)
	colorLiteral = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed, color.Bold)
)

// cmdTokens tokenizes source to end-of-file or the first lexer error,
// printing each token. In text mode, keywords are cyan and literals
// (string/number/regex/template fragments) are yellow; a trailing error, if
// any, is printed in red.
func cmdTokens(source string, jsonMode bool) {
	toks, lexErr := tokenizeAll(source)

	if jsonMode {
		printTokensJSON(toks, lexErr)
	} else {
		printTokensText(toks, lexErr)
	}

	if lexErr != nil {
		os.Exit(1)
	}
}

func tokenizeAll(source string) ([]token.Token, error) {
	l := lexer.New(source)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EndOfFile {
			return toks, nil
		}
	}
}

func isLiteralKind(k token.Kind) bool {
	switch k {
	case token.Number, token.String, token.Regex, token.TemplateLiteralFragment,
		token.True, token.False, token.Null, token.Undefined:
		return true
	default:
		return false
	}
}

func printTokensText(toks []token.Token, lexErr error) {
	for _, tok := range toks {
		text := tok.Text
		if tok.Kind == token.EndOfFile {
			text = "<eof>"
		}
		line := fmt.Sprintf("%-24s %-20q %d", tok.Kind, text, tok.Line)
		switch {
		case tok.Kind.IsKeyword():
			colorKeyword.Println(line)
		case isLiteralKind(tok.Kind):
			colorLiteral.Println(line)
		default:
			fmt.Println(line)
		}
	}
	if lexErr != nil {
		colorError.Fprintln(os.Stderr, lexErr)
	}
}

func printTokensJSON(toks []token.Token, lexErr error) {
	type tokenJSON struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
		Line int    `json:"line"`
	}

	out := make([]tokenJSON, len(toks))
	for i, tok := range toks {
		out[i] = tokenJSON{Kind: tok.Kind.String(), Text: tok.Text, Line: tok.Line}
	}

	payload := map[string]any{"tokens": out}
	if lexErr != nil {
		payload["error"] = lexErr.Error()
	}
	printJSON(payload)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: JSON encoding failed: %v\n", err)
		os.Exit(1)
	}
}
