package generator

import (
	"strings"

	"github.com/verte-zerg/keyladder/internal/charpool"
	"github.com/verte-zerg/keyladder/internal/model"
	"github.com/verte-zerg/keyladder/internal/wordlist"
)

// Mix weighs the sources of an endless chunk. Weights need not sum to one.
type Mix struct {
	Paragraph float64
	Sentences float64
	Generated float64
}

// DefaultMix is 40% curated paragraph, 40% sentences, 20% generated practice.
func DefaultMix() Mix {
	return Mix{Paragraph: 0.4, Sentences: 0.4, Generated: 0.2}
}

func (m Mix) total() float64 {
	return m.Paragraph + m.Sentences + m.Generated
}

// ChunkSupplier produces an unbounded series of text chunks for endless sessions.
type ChunkSupplier struct {
	gen   *Generator
	stage model.Stage
	mix   Mix
}

// NewChunkSupplier returns a supplier drawing from stage, normally the catalog's Full stage.
// A mix without positive weight falls back to DefaultMix.
func NewChunkSupplier(gen *Generator, stage model.Stage, mix Mix) *ChunkSupplier {
	if mix.total() <= 0 || mix.Paragraph < 0 || mix.Sentences < 0 || mix.Generated < 0 {
		mix = DefaultMix()
	}
	return &ChunkSupplier{gen: gen, stage: stage, mix: mix}
}

// NextChunk returns one chunk of text in lang. Corpus picks that do not fit the stage
// characters fall through to generated practice, so a chunk is never empty.
func (s *ChunkSupplier) NextChunk(lang string) string {
	g := s.gen
	set := g.corpus.LangOrDefault(lang)
	allowed := wordlist.CharSet(charpool.Set(s.stage))
	r := g.rnd.Float64() * s.mix.total()
	switch {
	case r < s.mix.Paragraph:
		if items := wordlist.FilterCorpus(set.AllParagraphs(), allowed); len(items) > 0 {
			return items[g.rnd.Intn(len(items))]
		}
	case r < s.mix.Paragraph+s.mix.Sentences:
		if items := wordlist.FilterCorpus(set.AllSentences(), allowed); len(items) > 0 {
			count := g.between(2, 3)
			picked := make([]string, 0, count)
			for i := 0; i < count; i++ {
				picked = append(picked, items[g.rnd.Intn(len(items))])
			}
			return strings.Join(picked, " ")
		}
	}
	return g.Practice(s.stage, 0, lang)
}
