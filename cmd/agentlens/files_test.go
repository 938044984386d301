package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentlens/agentlens-go/telemetry"
)

const sampleLog = `{"kind":"trace","externalTraceId":"t1","name":"run"}
{"kind":"span","externalTraceId":"t1","externalSpanId":"s1","payload":{"type":"agent","name":"Planner"}}
not valid json
{"kind":"span","externalTraceId":"t1","externalSpanId":"s2","payload":{"type":"function","name":"search"}}
`

func writeSample(t *testing.T, path string, compressed bool) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	if compressed {
		zw := gzip.NewWriter(f)
		_, err = zw.Write([]byte(sampleLog))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		return
	}
	_, err = f.WriteString(sampleLog)
	require.NoError(t, err)
}

func TestReadEventsPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	writeSample(t, path, false)

	items, malformed, err := readEvents(path)
	require.NoError(t, err)
	assert.Equal(t, 1, malformed)
	require.Len(t, items, 3)

	_, ok := items[0].(*telemetry.TraceEvent)
	assert.True(t, ok)
	span, ok := items[1].(*telemetry.SpanEvent)
	require.True(t, ok)
	assert.Equal(t, "s1", span.ExternalSpanID)
}

func TestReadEventsGzip(t *testing.T) {
	// Detection is content-based, so the extension does not matter.
	path := filepath.Join(t.TempDir(), "events.jsonl")
	writeSample(t, path, true)

	items, malformed, err := readEvents(path)
	require.NoError(t, err)
	assert.Equal(t, 1, malformed)
	assert.Len(t, items, 3)
}

func TestDiscoverLogs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "runs", "day1"), 0o755))
	writeSample(t, filepath.Join(dir, "runs", "day1", "a.jsonl"), false)
	writeSample(t, filepath.Join(dir, "runs", "day1", "b.jsonl.gz"), true)
	writeSample(t, filepath.Join(dir, "notes.txt"), false)

	explicit := filepath.Join(dir, "notes.txt")

	files, err := discoverLogs([]string{dir, explicit}, "**/*.jsonl*")
	require.NoError(t, err)

	// The directory walk matches only the pattern; explicit files are
	// always taken.
	require.Len(t, files, 3)
	assert.Contains(t, files, filepath.Join(dir, "runs", "day1", "a.jsonl"))
	assert.Contains(t, files, filepath.Join(dir, "runs", "day1", "b.jsonl.gz"))
	assert.Contains(t, files, explicit)
}

func TestDiscoverLogsBadPattern(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, filepath.Join(dir, "a.jsonl"), false)

	_, err := discoverLogs([]string{dir}, "[")
	assert.Error(t, err)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api_key: sk_file\nproject_id: proj_9\nbatch_threshold: 0\n"), 0o644))

	cfg, err := loadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, "sk_file", cfg.APIKey)
	assert.Equal(t, "proj_9", cfg.ProjectID)
	require.NotNil(t, cfg.BatchThreshold)
	assert.Equal(t, 0, *cfg.BatchThreshold)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("AGENTLENS_API_KEY", "")
	_, err := loadConfig("", false)
	assert.Error(t, err)
}
