// Package generator builds typing text for stages, difficulty levels and endless sessions.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/verte-zerg/keyladder/internal/charpool"
	"github.com/verte-zerg/keyladder/internal/corpus"
	"github.com/verte-zerg/keyladder/internal/model"
	"github.com/verte-zerg/keyladder/internal/stages"
	"github.com/verte-zerg/keyladder/internal/wordlist"
)

// FallbackDrill is returned when a stage offers nothing to build content from.
const FallbackDrill = "fff jjj fff jjj ff jj fj jf"

// Tuning holds the categorical mix of the open practice level.
type Tuning struct {
	MegaRealWords float64
	MegaDrills    float64
}

// DefaultTuning returns the stock practice-level ratios.
func DefaultTuning() Tuning {
	return Tuning{MegaRealWords: 0.6, MegaDrills: 0.2}
}

// Generator produces randomized typing text.
type Generator struct {
	rnd        *rand.Rand
	corpus     *corpus.Library
	thresholds stages.Thresholds
	tuning     Tuning
	weakSet    map[rune]struct{}
	weakFactor float64
	log        *zap.SugaredLogger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand injects the random source. Tests pass a fixed seed for repeatable output.
func WithRand(rnd *rand.Rand) Option {
	return func(g *Generator) { g.rnd = rnd }
}

// WithSeed seeds the random source; zero keeps the time-based seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		if seed != 0 {
			g.rnd = rand.New(rand.NewSource(seed))
		}
	}
}

// WithCorpus sets the curated corpus library.
func WithCorpus(lib *corpus.Library) Option {
	return func(g *Generator) { g.corpus = lib }
}

// WithThresholds sets the stage ids at which caps, punctuation and paragraphs unlock.
func WithThresholds(th stages.Thresholds) Option {
	return func(g *Generator) { g.thresholds = th }
}

// WithTuning overrides the practice-level ratios.
func WithTuning(t Tuning) Option {
	return func(g *Generator) { g.tuning = t }
}

// WithLogger sets the debug logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(g *Generator) { g.log = log }
}

// New returns a Generator seeded with the current time, the embedded corpus and the
// thresholds of the built-in catalog.
func New(opts ...Option) *Generator {
	g := &Generator{
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		corpus:     corpus.Default(),
		thresholds: stages.Default().Thresholds(),
		tuning:     DefaultTuning(),
		log:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetFocus biases real-word selection toward words containing weak characters.
// An empty set turns the bias off.
func (g *Generator) SetFocus(weak map[rune]struct{}, factor float64) {
	g.weakSet = weak
	g.weakFactor = factor
}

// PseudoWord builds a typeable token of exactly length characters from pool.
func (g *Generator) PseudoWord(pool []rune, length int) string {
	return PseudoWord(g.rnd, pool, length)
}

type levelContext struct {
	stage   model.Stage
	pool    charpool.Pool
	letters []rune
	allowed wordlist.CharSet
	words   []string
	weights []float64
	total   float64
	caps    bool
	punct   bool
}

func (g *Generator) context(stage model.Stage, lang string) levelContext {
	c := levelContext{
		stage:   stage,
		pool:    charpool.FromStage(stage),
		allowed: wordlist.CharSet(charpool.Set(stage)),
		caps:    stage.ID >= g.thresholds.Caps,
		punct:   stage.ID >= g.thresholds.Punct,
	}
	c.punct = c.punct && len(c.pool.Punctuation) > 0
	c.letters = caseless(c.pool.Words())
	set := g.corpus.LangOrDefault(lang)
	c.words = wordlist.FilterCorpus(set.Words, c.allowed)
	if len(g.weakSet) > 0 && len(c.words) > 0 {
		c.weights, c.total = weighWords(c.words, g.weakSet, g.weakFactor)
	}
	return c
}

// caseless drops uppercase letters whose lowercase form is also present, so pseudo-words
// stay lowercase and capitalization is left to applyCaps.
func caseless(rs []rune) []rune {
	has := make(map[rune]struct{}, len(rs))
	for _, r := range rs {
		has[r] = struct{}{}
	}
	out := make([]rune, 0, len(rs))
	for _, r := range rs {
		if unicode.IsUpper(r) {
			if _, ok := has[unicode.ToLower(r)]; ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func weighWords(words []string, weakSet map[rune]struct{}, factor float64) ([]float64, float64) {
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		weakCount := 0
		for _, r := range word {
			if _, ok := weakSet[unicode.ToLower(r)]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*factor
		weights[i] = w
		total += w
	}
	return weights, total
}

func (g *Generator) pickWord(c levelContext) string {
	idx := g.rnd.Intn(len(c.words))
	if c.total > 0 {
		r := g.rnd.Float64() * c.total
		acc := 0.0
		for j, w := range c.weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
	}
	word := c.words[idx]
	if !c.caps {
		word = strings.ToLower(word)
	}
	return word
}

func (g *Generator) pickRune(rs []rune) rune {
	return rs[g.rnd.Intn(len(rs))]
}

func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rnd.Intn(hi-lo+1)
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
