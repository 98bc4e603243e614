package stages

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keyladder/internal/model"
)

func TestDefaultCatalogIsCumulative(t *testing.T) {
	cat := Default()
	all := cat.Stages()
	require.Len(t, all, 26)
	for i := 1; i < len(all); i++ {
		prev := all[i-1]
		for _, ch := range prev.Chars {
			assert.True(t, all[i].HasChar(ch), "stage %d lost %q", all[i].ID, ch)
		}
	}
	first, err := cat.Find(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "j", " "}, first.Chars)
}

func TestDefaultThresholds(t *testing.T) {
	th := Default().Thresholds()
	assert.Equal(t, Thresholds{Caps: 16, Punct: 13, Mastery: 22}, th)
}

func TestShiftAddsUppercase(t *testing.T) {
	cat := Default()
	before, err := cat.Find(15)
	require.NoError(t, err)
	after, err := cat.Find(16)
	require.NoError(t, err)
	assert.False(t, before.HasChar("A"))
	assert.True(t, after.HasChar("A"))
	assert.True(t, after.HasChar("Z"))
	assert.True(t, cat.Last().HasChar("\n"))
}

func TestFindUnknown(t *testing.T) {
	_, err := Default().Find(99)
	require.True(t, errors.Is(err, ErrUnknownStage))
	_, err = Default().Find(0)
	require.True(t, errors.Is(err, ErrUnknownStage))
}

func TestFullHasNoCategory(t *testing.T) {
	cat := Default()
	full := cat.Full()
	assert.Equal(t, model.CategoryNone, full.Category)
	assert.Equal(t, cat.Last().Chars, full.Chars)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stages.toml")
	data := `
[[stage]]
name = "Home"
new = ["a", "s", " "]

[[stage]]
new = ["Shift", "."]

[[stage]]
name = "Read"
category = "general"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	cat, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cat.Stages(), 3)
	second, err := cat.Find(2)
	require.NoError(t, err)
	assert.Equal(t, "Stage 2", second.Name)
	assert.ElementsMatch(t, []string{"a", "s", " ", ".", "A", "S"}, second.Chars)
	assert.Equal(t, Thresholds{Caps: 2, Punct: 2, Mastery: 3}, cat.Thresholds())
}

func TestBuildRejectsMultiCharKeys(t *testing.T) {
	_, err := Build([]Step{{New: []string{"ab"}}})
	require.Error(t, err)
	_, err = Build(nil)
	require.Error(t, err)
}
