// internal/words/words_test.go
package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedList(t *testing.T) {
	src, err := Load("")
	require.NoError(t, err)
	assert.Greater(t, src.Count(), 0)

	members := make(map[string]bool, len(src.words))
	for _, w := range src.words {
		members[w] = true
	}
	for i := 0; i < 20; i++ {
		w := src.Pick()
		assert.NotEmpty(t, w)
		assert.True(t, members[w], "picked word comes from the list")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\n\n  two  \nthree\n"), 0o644))

	src, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, src.Count(), "blank lines skipped, whitespace trimmed")
	assert.Contains(t, []string{"one", "two", "three"}, src.Pick())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
