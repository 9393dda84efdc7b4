package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntries_RestartableAndTyped(t *testing.T) {
	df := writeSession(t,
		userFixIt,
		"",
		`{"type":"system","subtype":"x","timestamp":"2025-06-01T10:00:01Z"}`,
		asstFixIt,
		`{garbage`,
	)
	log := OpenLog(df.Path)

	collect := func() (entries []LogEntry, errs []error) {
		for e, err := range log.Entries() {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			entries = append(entries, e)
		}
		return entries, errs
	}

	first, errs := collect()
	require.Len(t, first, 3)
	require.Len(t, errs, 1)

	var pe *ParseError
	require.True(t, errors.As(errs[0], &pe))
	assert.Equal(t, 5, pe.Line, "blank lines still count toward line numbers")

	u, ok := first[0].(UserEntry)
	require.True(t, ok)
	assert.Equal(t, "fix it", u.Text)
	assert.Equal(t, "user", u.Role)

	o, ok := first[1].(OtherEntry)
	require.True(t, ok)
	assert.Equal(t, "system", o.Type)
	assert.False(t, o.Timestamp.IsZero())

	a, ok := first[2].(AssistantEntry)
	require.True(t, ok)
	assert.Equal(t, "claude-haiku-3-5", a.Model)
	assert.Equal(t, []string{"Read"}, a.Tools)
	require.NotNil(t, a.Usage)
	assert.Equal(t, Usage{RawInput: 5, Output: 2}, *a.Usage)

	second, _ := collect()
	assert.Equal(t, first, second, "ranging twice re-reads the file")
}

func TestEntries_EarlyBreak(t *testing.T) {
	df := writeSession(t, userFixIt, asstFixIt, userThanks, asstThanks)
	n := 0
	for range OpenLog(df.Path).Entries() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestEntries_MissingFileYieldsOneFileError(t *testing.T) {
	var errs []error
	for e, err := range OpenLog(filepath.Join(t.TempDir(), "nope.jsonl")).Entries() {
		assert.Nil(t, e)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	var fe *FileError
	assert.True(t, errors.As(errs[0], &fe))
	assert.True(t, errors.Is(errs[0], os.ErrNotExist))
}

func TestEntries_CacheUsage(t *testing.T) {
	df := writeSession(t,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:00Z","message":{"model":"claude-sonnet-4-6","usage":{"input_tokens":100,"output_tokens":50,"cache_read_input_tokens":500,"cache_creation_input_tokens":200}}}`,
	)
	rec, err := Reconstruct(OpenLog(df.Path).Entries())
	require.NoError(t, err)
	require.Len(t, rec.Queries, 1)

	q := rec.Queries[0]
	assert.Equal(t, int64(100), q.RawInputTokens)
	assert.Equal(t, int64(200), q.CacheCreationTokens)
	assert.Equal(t, int64(500), q.CacheReadTokens)
	assert.Equal(t, int64(800), q.InputTokens)
	assert.Equal(t, int64(850), q.TotalTokens)
	assert.Greater(t, q.Cost, 0.0)
}

func TestLoadHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	lines := []string{
		`{"display":"/clear","sessionId":"a"}`,
		`{"display":"  build the parser  ","sessionId":"a"}`,
		`{"display":"second prompt","sessionId":"a"}`,
		`not json`,
		`{"display":"/review this whole module carefully please","sessionId":"b"}`,
		`{"display":"no session"}`,
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600))

	labels, err := LoadHistory(path)
	require.NoError(t, err)
	assert.Equal(t, HistoryLabels{
		"a": "build the parser",
		"b": "/review this whole module carefully please",
	}, labels)
}

func TestLoadHistory_Missing(t *testing.T) {
	labels, err := LoadHistory(filepath.Join(t.TempDir(), "history.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, labels)
}

func TestListProjectsAndSessionFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "-b-proj", "nested"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "-a-proj"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.jsonl"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "-b-proj", "s1.jsonl"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "-b-proj", "notes.txt"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "-b-proj", "nested", "s2.jsonl"), nil, 0o600))

	projects, err := ListProjects(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"-a-proj", "-b-proj"}, projects)

	files, err := ListSessionFiles(root, "-b-proj")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "s1", files[0].SessionID)
	assert.Equal(t, "-b-proj", files[0].ProjectDir)
}

func TestScanClaudeMd(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "-x-with"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "-x-without"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "-x-with", "CLAUDE.md"), []byte("0123456789"), 0o600))

	files := ScanClaudeMd(root, []string{"-x-with", "-x-without"})
	require.Len(t, files, 1)
	assert.Equal(t, "-x-with", files[0].Project)
	assert.Equal(t, int64(10), files[0].Bytes)
	assert.Equal(t, int64(3), files[0].EstimatedTokens) // 2.5 rounds up
}

func TestScanClaudeMd_DecodedProjectRoot(t *testing.T) {
	projectRoot := t.TempDir()
	if strings.Contains(projectRoot, "-") {
		t.Skip("temp dir path contains dashes and cannot round-trip the encoding")
	}
	require.NoError(t, os.WriteFile(filepath.Join(projectRoot, "CLAUDE.md"), []byte("abcd"), 0o600))

	encoded := strings.ReplaceAll(projectRoot, string(filepath.Separator), "-")
	projectsDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(projectsDir, encoded), 0o755))

	files := ScanClaudeMd(projectsDir, []string{encoded})
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(projectRoot, "CLAUDE.md"), files[0].Path)
	assert.Equal(t, int64(1), files[0].EstimatedTokens)
}

func TestDecodeProjectRoot(t *testing.T) {
	assert.Equal(t, "/home/me/app", DecodeProjectRoot("-home-me-app"))
	assert.Equal(t, "/tmp", DecodeProjectRoot("tmp"))
}

func TestScanLines_OverlongLineSkipped(t *testing.T) {
	type call struct {
		lineNo int
		line   string
		err    error
	}
	var calls []call
	input := "short\n0123456789abc\n\ntail\nlast-line-too-long"
	err := scanLines(strings.NewReader(input), 8, func(lineNo int, line []byte, err error) bool {
		calls = append(calls, call{lineNo, string(line), err})
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []call{
		{1, "short", nil},
		{2, "", ErrLineTooLong},
		{4, "tail", nil},
		{5, "", ErrLineTooLong},
	}, calls)
}

func TestEntries_OverlongLineKeepsSession(t *testing.T) {
	if testing.Short() {
		t.Skip("writes a 17 MiB fixture")
	}
	huge := `{"type":"user","timestamp":"2025-06-01T10:00:06Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"` +
		strings.Repeat("A", 17<<20) + `"}]}}`
	df := writeSession(t, userFixIt, asstFixIt, huge, asstToolCont)

	var parseErrs []*ParseError
	for _, err := range OpenLog(df.Path).Entries() {
		var pe *ParseError
		if errors.As(err, &pe) {
			parseErrs = append(parseErrs, pe)
			continue
		}
		require.NoError(t, err, "an overlong line must not end the file")
	}
	require.Len(t, parseErrs, 1)
	assert.Equal(t, 3, parseErrs[0].Line)
	assert.ErrorIs(t, parseErrs[0], ErrLineTooLong)

	result := ParseFile(df, nil)
	require.NoError(t, result.Err)
	require.NotNil(t, result.Session)
	assert.Equal(t, 2, result.Session.QueryCount)
	assert.Equal(t, 1, result.ParseErrors)
}
