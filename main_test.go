package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/reel-director/internal/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestLoadVocabulary_LogsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("visual: [crop]\nmusic: [cowbell]\n"), 0o600))

	buf := captureLog(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := revision.NewNoteRouter(nil)
	loadVocabulary(ctx, router, path)

	assert.Equal(t, []string{"cowbell"}, router.Vocabulary().Music)
	assert.Equal(t, 1, strings.Count(buf.String(), "Note vocabulary"))
}

func TestLoadVocabulary_BrokenFileKeepsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("visual: [unclosed\n"), 0o600))

	buf := captureLog(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := revision.NewNoteRouter(nil)
	loadVocabulary(ctx, router, path)

	assert.Equal(t, revision.DefaultVocabulary().Music, router.Vocabulary().Music)
	assert.Contains(t, buf.String(), "Using the built-in note vocabulary")
}

func TestFilterSensitiveHeaders(t *testing.T) {
	filtered := filterSensitiveHeaders(map[string]string{
		"authorization": "Bearer abc",
		"content-type":  "application/json",
	})
	assert.Equal(t, "[REDACTED]", filtered["authorization"])
	assert.Equal(t, "application/json", filtered["content-type"])
}
