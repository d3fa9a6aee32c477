// Package conformance runs the parser against a test262-shaped corpus and
// tracks pass/fail drift against a checked-in baseline. It has no compiled-in
// corpus of its own: callers point Run at a directory of *.js files (e.g. a
// local test262 checkout) and compare the result to a stored Baseline.
package conformance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"ecmafront/internal/parser"
)

// frontmatter mirrors the subset of a test262 YAML `/*--- ... ---*/` block
// this harness cares about: whether the test expects a parse-phase
// SyntaxError.
type frontmatter struct {
	Negative *struct {
		Phase string `yaml:"phase"`
		Type  string `yaml:"type"`
	} `yaml:"negative"`
}

// Classify scans source for a test262 YAML frontmatter block and reports
// whether the test expects a parse error. ok is false if no frontmatter
// block is present (malformed or non-test262 input); expectError is only
// meaningful when ok is true.
func Classify(source []byte) (expectError bool, ok bool) {
	text := string(source)
	start := strings.Index(text, "/*---")
	if start < 0 {
		return false, false
	}
	end := strings.Index(text[start:], "---*/")
	if end < 0 {
		return false, false
	}
	block := text[start+len("/*---") : start+end]

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return false, false
	}
	if fm.Negative == nil {
		return false, true
	}
	return fm.Negative.Phase == "parse" && fm.Negative.Type == "SyntaxError", true
}

// Baseline records, by relative file path, the set of corpus files that
// were known to parse successfully and the set known to fail (either by
// producing a parse error on a positive test, or by failing to error on a
// negative one) the last time it was captured.
type Baseline struct {
	Success map[string]bool `json:"success"`
	Failed  map[string]bool `json:"failed"`
}

// NewBaseline returns an empty baseline.
func NewBaseline() *Baseline {
	return &Baseline{Success: map[string]bool{}, Failed: map[string]bool{}}
}

// LoadBaseline reads a baseline from a JSON file. A missing file yields an
// empty baseline, not an error, so a first run has something to diff
// against.
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewBaseline(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading baseline %s: %w", path, err)
	}
	b := NewBaseline()
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("parsing baseline %s: %w", path, err)
	}
	if b.Success == nil {
		b.Success = map[string]bool{}
	}
	if b.Failed == nil {
		b.Failed = map[string]bool{}
	}
	return b, nil
}

// Save writes the baseline to path as indented JSON, creating parent
// directories as needed.
func (b *Baseline) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating baseline dir: %w", err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding baseline: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Outcome is one file's result from a conformance Run.
type Outcome struct {
	Path        string
	ExpectError bool
	GotError    bool
	Unsupported bool // Classify couldn't find/parse a frontmatter block
	ParseErr    error
}

// Passed reports whether the file's actual result matched its expectation.
func (o Outcome) Passed() bool {
	return !o.Unsupported && o.ExpectError == o.GotError
}

// Report is the result of a full conformance Run: every file's outcome,
// plus the set of files whose pass/fail status changed relative to the
// baseline that was diffed against (empty if UPDATE_BASELINE was set).
type Report struct {
	RunID      string
	Outcomes   []Outcome
	Regressed  []string // passed in baseline, now failing
	Fixed      []string // failed in baseline, now passing
	NewFailure []string // not present in baseline at all, now failing
}

// Run walks root for *.js files, parses each with the front-end parser,
// classifies expected vs. actual outcome, and diffs against the baseline
// file at baselinePath. Paths containing "staging", and any path listed in
// skip, are excluded — staging tests are test262's own in-progress proposal
// tests and are not expected to be stable.
//
// If the UPDATE_BASELINE environment variable is set to a non-empty value,
// Run regenerates the baseline file instead of diffing against it; Report's
// drift fields are left empty in that mode.
func Run(root string, skip []string) (Report, error) {
	report := Report{RunID: uuid.NewString()}

	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[s] = true
	}

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".js") {
			return nil
		}
		if strings.Contains(path, "staging") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if skipSet[rel] {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)

	baselinePath := filepath.Join("testdata", "conformance", "baseline.json")
	updating := os.Getenv("UPDATE_BASELINE") != ""

	var baseline *Baseline
	if !updating {
		baseline, err = LoadBaseline(baselinePath)
		if err != nil {
			return report, err
		}
	}

	newBaseline := NewBaseline()

	for _, path := range files {
		rel, _ := filepath.Rel(root, path)
		source, err := os.ReadFile(path)
		if err != nil {
			return report, fmt.Errorf("reading %s: %w", path, err)
		}

		expectError, ok := Classify(source)
		outcome := Outcome{Path: rel, Unsupported: !ok}
		if ok {
			outcome.ExpectError = expectError
			_, parseErr := parser.New(string(source)).ParseSourceFile()
			outcome.GotError = parseErr != nil
			outcome.ParseErr = parseErr
		}
		report.Outcomes = append(report.Outcomes, outcome)

		if outcome.Unsupported {
			continue
		}
		if outcome.Passed() {
			newBaseline.Success[rel] = true
		} else {
			newBaseline.Failed[rel] = true
		}

		if !updating {
			switch {
			case baseline.Success[rel] && !outcome.Passed():
				report.Regressed = append(report.Regressed, rel)
			case baseline.Failed[rel] && outcome.Passed():
				report.Fixed = append(report.Fixed, rel)
			case !baseline.Success[rel] && !baseline.Failed[rel] && !outcome.Passed():
				report.NewFailure = append(report.NewFailure, rel)
			}
		}
	}

	if updating {
		if err := newBaseline.Save(baselinePath); err != nil {
			return report, err
		}
	}

	return report, nil
}
