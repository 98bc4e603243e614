package wordlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterEnglishASCII(t *testing.T) {
	filter := FilterForLang("en")
	assert.True(t, filter("hello"))
	for _, word := range []string{"résumé", "naïve", "don’t", "co-op"} {
		assert.False(t, filter(word), word)
	}
}

func TestFilterLettersForOtherLangs(t *testing.T) {
	filter := FilterForLang("de")
	assert.True(t, filter("straße"))
	assert.False(t, filter("a1"))
	assert.False(t, filter(""))
}

func TestIsTypeable(t *testing.T) {
	allowed := NewCharSet('f', 'j', 'a', 'd', '-', ' ')
	assert.True(t, IsTypeable("jad", allowed))
	assert.True(t, IsTypeable("Fad", allowed), "uppercase falls back to lowercase")
	assert.True(t, IsTypeable("fad–jad", allowed), "en dash types as minus")
	assert.False(t, IsTypeable("fads", allowed))
	assert.False(t, IsTypeable("", allowed))
}

func TestIsTypeableSupersetMonotonic(t *testing.T) {
	small := NewCharSet('a', 's', 'd')
	large := NewCharSet('a', 's', 'd', 'f', 'g', 'h')
	for _, word := range []string{"sad", "dad", "ads", "as", "Sad"} {
		assert.True(t, IsTypeable(word, small), word)
		assert.True(t, IsTypeable(word, large), word)
	}
}

func TestFilterCorpusPreservesOrder(t *testing.T) {
	allowed := NewCharSet('a', 'd', 's', 'l', 'k', 'f', 'j', ' ')
	got := FilterCorpus([]string{"flask", "sad lad", "quick", "ask", ""}, allowed)
	assert.Equal(t, []string{"flask", "sad lad", "ask"}, got)
}
