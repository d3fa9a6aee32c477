package conformance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// test262Dir resolves the corpus root from TEST262_DIR, falling back to
// testdata/test262. Tests that need a real corpus skip entirely if neither
// is present, in the style of an opt-in integration suite.
func test262Dir(t *testing.T) string {
	t.Helper()
	if dir := os.Getenv("TEST262_DIR"); dir != "" {
		return dir
	}
	dir := filepath.Join("testdata", "test262")
	if _, err := os.Stat(dir); err != nil {
		t.Skip("no test262 corpus available (set TEST262_DIR or populate testdata/test262)")
	}
	return dir
}

func TestClassifyPositiveTest(t *testing.T) {
	source := []byte(`/*---
description: a normal passing test
---*/
var x = 1;
`)
	expectError, ok := Classify(source)
	require.True(t, ok)
	assert.False(t, expectError)
}

func TestClassifyNegativeParseTest(t *testing.T) {
	source := []byte(`/*---
description: a syntax error test
negative:
  phase: parse
  type: SyntaxError
---*/
var x = ;
`)
	expectError, ok := Classify(source)
	require.True(t, ok)
	assert.True(t, expectError)
}

func TestClassifyNegativeRuntimeTestIsNotAParseExpectation(t *testing.T) {
	source := []byte(`/*---
description: a test that throws at runtime, not parse time
negative:
  phase: runtime
  type: TypeError
---*/
null.x;
`)
	expectError, ok := Classify(source)
	require.True(t, ok)
	assert.False(t, expectError)
}

func TestClassifyNoFrontmatterIsUnsupported(t *testing.T) {
	_, ok := Classify([]byte(`var x = 1;`))
	assert.False(t, ok)
}

func TestBaselineRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline.json")

	b := NewBaseline()
	b.Success["a.js"] = true
	b.Failed["b.js"] = true
	require.NoError(t, b.Save(path))

	loaded, err := LoadBaseline(path)
	require.NoError(t, err)
	assert.True(t, loaded.Success["a.js"])
	assert.True(t, loaded.Failed["b.js"])
}

func TestLoadBaselineMissingFileIsEmpty(t *testing.T) {
	b, err := LoadBaseline(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Empty(t, b.Success)
	assert.Empty(t, b.Failed)
}

func TestRunAgainstCorpus(t *testing.T) {
	root := test262Dir(t)
	report, err := Run(root, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.NotEmpty(t, report.Outcomes)
}
