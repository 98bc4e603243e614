package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWordsFiltersAndDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nhello\n\nworld\nhello\nCaps\n"), 0o644))

	words, err := LoadWords(path, FilterForLang("en"))
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "world"}, words)
}

func TestReadWordsEmpty(t *testing.T) {
	_, err := ReadWords(strings.NewReader("\n\n"), nil)
	require.Error(t, err)
}
