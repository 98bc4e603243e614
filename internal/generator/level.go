package generator

import (
	"strings"

	"github.com/verte-zerg/keyladder/internal/charpool"
	"github.com/verte-zerg/keyladder/internal/model"
	"github.com/verte-zerg/keyladder/internal/wordlist"
)

// MaxSubLevel is the hardest difficulty sub-level of a stage.
const MaxSubLevel = 10

type levelPolicy func(g *Generator, c levelContext) string

type sentencePlan struct {
	sentences int
	tokens    int
	realWord  float64
	caps      float64
	extras    float64
}

// sentencePlans drive sub-levels 5 to 9. Real-word and capital chances climb from 0.55 to 0.8.
var sentencePlans = []sentencePlan{
	{sentences: 1, tokens: 12, realWord: 0.55, caps: 0.55},
	{sentences: 1, tokens: 13, realWord: 0.6, caps: 0.6},
	{sentences: 1, tokens: 15, realWord: 0.65, caps: 0.7},
	{sentences: 2, tokens: 8, realWord: 0.7, caps: 0.75},
	{sentences: 1, tokens: 18, realWord: 0.8, caps: 0.8, extras: 0.12},
}

// ladder maps sub-level to its content policy.
var ladder = []levelPolicy{
	megaLevel,
	introLevel,
	anchorLevel,
	flowLevel,
	wordsLevel,
	sentenceLevel(sentencePlans[0]),
	sentenceLevel(sentencePlans[1]),
	sentenceLevel(sentencePlans[2]),
	sentenceLevel(sentencePlans[3]),
	sentenceLevel(sentencePlans[4]),
	masterLevel,
}

// Level returns text for a stage at a difficulty sub-level. Stages at or past the
// mastery threshold that carry a corpus category get curated paragraphs instead of
// the generated ladder when any paragraph fits the stage characters.
func (g *Generator) Level(stage model.Stage, subLevel int, lang string) string {
	if stage.Category != model.CategoryNone && stage.ID >= g.thresholds.Mastery {
		if text := g.paragraphs(stage, subLevel, lang); text != "" {
			return text
		}
		g.log.Debugw("no typeable paragraphs, using generated content", "stage", stage.ID, "category", stage.Category)
	}
	return g.Practice(stage, subLevel, lang)
}

// Practice runs the generated ladder for a stage, ignoring curated paragraphs.
// Unknown sub-levels get short repeated character drills.
func (g *Generator) Practice(stage model.Stage, subLevel int, lang string) string {
	c := g.context(stage, lang)
	if c.pool.Empty() {
		g.log.Debugw("stage has no characters, using fallback drill", "stage", stage.ID)
		return FallbackDrill
	}
	policy := unknownLevel
	if subLevel >= 0 && subLevel < len(ladder) {
		policy = ladder[subLevel]
	}
	text := strings.TrimSpace(policy(g, c))
	if text == "" {
		g.log.Debugw("empty level content, using fallback drill", "stage", stage.ID, "level", subLevel)
		return g.fallback(c)
	}
	return text
}

func (g *Generator) fallback(c levelContext) string {
	chars := c.letters
	if len(chars) == 0 {
		return FallbackDrill
	}
	a, b := chars[0], chars[len(chars)-1]
	parts := []string{
		strings.Repeat(string(a), 3),
		strings.Repeat(string(b), 3),
		strings.Repeat(string(a), 3),
		strings.Repeat(string(b), 3),
	}
	return strings.Join(parts, " ")
}

func (g *Generator) paragraphs(stage model.Stage, subLevel int, lang string) string {
	set := g.corpus.LangOrDefault(lang)
	items := wordlist.FilterCorpus(set.ParagraphsFor(stage.Category), wordlist.CharSet(charpool.Set(stage)))
	if len(items) == 0 {
		return ""
	}
	count := 1
	if subLevel > 0 {
		count = 1 + (subLevel-1)/3
	}
	if count > len(items) {
		count = len(items)
	}
	picked := make([]string, 0, count)
	for _, idx := range g.rnd.Perm(len(items))[:count] {
		picked = append(picked, items[idx])
	}
	sep := " "
	if stage.Category == model.CategoryCode {
		sep = "\n\n"
	}
	return strings.Join(picked, sep)
}

// megaLevel mixes real words, pseudo-words and drills of the stage's new characters.
func megaLevel(g *Generator, c levelContext) string {
	realChance := 0.0
	if len(c.words) >= 6 {
		realChance = g.tuning.MegaRealWords
	}
	drillFrom := 1 - g.tuning.MegaDrills
	tokens := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		var tok string
		r := g.rnd.Float64()
		switch {
		case r < realChance:
			tok = g.pickWord(c)
		case r < drillFrom:
			tok = g.PseudoWord(c.letters, g.between(3, 8))
		default:
			tok = strings.Repeat(string(g.pickRune(c.pool.New)), 3)
		}
		if c.caps {
			tok = applyCaps(g.rnd, tok, 0.2)
		}
		tokens = append(tokens, tok)
	}
	return g.terminate(c, strings.Join(tokens, " "))
}

// introLevel drills the stage's new characters in short repeated runs.
func introLevel(g *Generator, c levelContext) string {
	count := g.between(10, 12)
	tokens := make([]string, 0, count)
	for i := 0; i < count; i++ {
		length := g.between(3, 8)
		cur := g.pickRune(c.pool.New)
		switchAt := -1
		if len(c.pool.New) > 1 && g.rnd.Float64() < 0.3 {
			switchAt = length / 2
		}
		seq := make([]rune, 0, length+3)
		for len(seq) < length {
			if switchAt >= 0 && len(seq) >= switchAt {
				cur = g.otherRune(c.pool.New, cur)
				switchAt = -1
			}
			for n := repeatRun(g.rnd.Float64()); n > 0; n-- {
				seq = append(seq, cur)
			}
		}
		tokens = append(tokens, string(seq[:length]))
	}
	return strings.Join(tokens, " ")
}

func repeatRun(p float64) int {
	switch {
	case p < 0.45:
		return 1
	case p < 0.8:
		return 2
	default:
		return 3
	}
}

func (g *Generator) otherRune(rs []rune, not rune) rune {
	for i := 0; i < 8; i++ {
		if r := g.pickRune(rs); r != not {
			return r
		}
	}
	for _, r := range rs {
		if r != not {
			return r
		}
	}
	return not
}

// anchorLevel ties new characters to the home anchors. Tiny pools alternate hands.
func anchorLevel(g *Generator, c levelContext) string {
	if len(c.pool.All) <= 7 {
		tokens := make([]string, 0, 10)
		for i := 0; i < 10; i++ {
			tokens = append(tokens, handAlternation(g.rnd, c.pool.All, c.pool.Left, c.pool.Right, g.between(4, 6)))
		}
		return strings.Join(tokens, " ")
	}
	var anchors []rune
	for _, r := range c.pool.All {
		if r == 'f' || r == 'j' {
			anchors = append(anchors, r)
		}
	}
	if len(anchors) == 0 {
		anchors = c.pool.All
	}
	triads := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		n, a := string(g.pickRune(c.pool.New)), string(g.pickRune(anchors))
		var triad []string
		switch g.rnd.Intn(3) {
		case 0:
			triad = []string{n, a, n}
		case 1:
			triad = []string{a, n, a}
		default:
			triad = []string{n, n, n}
		}
		triads = append(triads, strings.Join(triad, ""))
	}
	return strings.Join(triads, " ")
}

// flowLevel blends short pseudo-words with real words once the stage is large enough.
func flowLevel(g *Generator, c levelContext) string {
	realAllowed := len(c.words) >= 6 && len(c.pool.All) > 7
	tokens := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		if realAllowed && g.rnd.Float64() < 0.5 {
			tokens = append(tokens, g.pickWord(c))
			continue
		}
		tokens = append(tokens, g.PseudoWord(c.letters, g.between(2, 4)))
	}
	return strings.Join(tokens, " ")
}

// wordsLevel prefers real words as the vocabulary grows.
func wordsLevel(g *Generator, c levelContext) string {
	chance := 0.4
	if len(c.words) >= 30 {
		chance = 0.6
	}
	tokens := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		if len(c.words) > 0 && g.rnd.Float64() < chance {
			tokens = append(tokens, g.pickWord(c))
			continue
		}
		tokens = append(tokens, g.PseudoWord(c.letters, g.between(4, 7)))
	}
	return strings.Join(tokens, " ")
}

func sentenceLevel(plan sentencePlan) levelPolicy {
	return func(g *Generator, c levelContext) string {
		parts := make([]string, 0, plan.sentences)
		for i := 0; i < plan.sentences; i++ {
			parts = append(parts, g.sentence(c, plan))
		}
		return strings.Join(parts, " ")
	}
}

// masterLevel produces two or three long sentences with digits and symbols mixed in.
func masterLevel(g *Generator, c levelContext) string {
	count := g.between(2, 3)
	parts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		plan := sentencePlan{tokens: g.between(16, 24), realWord: 0.85, caps: 0.9, extras: 0.15}
		parts = append(parts, g.sentence(c, plan))
	}
	return strings.Join(parts, " ")
}

func unknownLevel(g *Generator, c levelContext) string {
	tokens := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		tokens = append(tokens, strings.Repeat(string(g.pickRune(c.pool.All)), g.between(2, 3)))
	}
	return strings.Join(tokens, " ")
}

func (g *Generator) sentence(c levelContext, plan sentencePlan) string {
	words := make([]string, 0, plan.tokens)
	for i := 0; i < plan.tokens; i++ {
		if i > 0 && plan.extras > 0 && g.rnd.Float64() < plan.extras {
			if extra := g.extraToken(c); extra != "" {
				words = append(words, extra)
				continue
			}
		}
		capChance := plan.caps * 0.15
		if i == 0 {
			capChance = plan.caps
		}
		tok := g.buildWord(c, 2, 7, plan.realWord, capChance)
		if c.punct && i < plan.tokens-1 {
			tok = applyPunct(g.rnd, tok, 0.1, c.pool.InnerMarks())
		}
		words = append(words, tok)
	}
	return g.terminate(c, strings.Join(words, " "))
}

// buildWord returns a real word with probability realChance, otherwise a pseudo-word of
// minLen to maxLen characters, capitalized with probability capChance once caps unlock.
func (g *Generator) buildWord(c levelContext, minLen, maxLen int, realChance, capChance float64) string {
	var tok string
	if len(c.words) > 0 && g.rnd.Float64() < realChance {
		tok = g.pickWord(c)
	} else {
		tok = g.PseudoWord(c.letters, g.between(minLen, maxLen))
	}
	if c.caps {
		tok = applyCaps(g.rnd, tok, capChance)
	}
	return tok
}

func (g *Generator) extraToken(c levelContext) string {
	hasDigits, hasSymbols := len(c.pool.Digits) > 0, len(c.pool.Symbols) > 0
	useDigits := hasDigits && (!hasSymbols || g.rnd.Intn(2) == 0)
	switch {
	case useDigits:
		return g.runOf(c.pool.Digits, g.between(2, 4))
	case hasSymbols:
		return g.runOf(c.pool.Symbols, g.between(2, 3))
	default:
		return ""
	}
}

func (g *Generator) runOf(rs []rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = g.pickRune(rs)
	}
	return string(out)
}

func (g *Generator) terminate(c levelContext, text string) string {
	if !c.punct || text == "" {
		return text
	}
	marks := c.pool.TerminalMarks()
	if len(marks) == 0 {
		return text
	}
	return text + string(g.pickRune(marks))
}
