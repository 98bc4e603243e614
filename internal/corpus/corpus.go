// Package corpus holds the curated words, sentences, paragraphs and code lines per language.
package corpus

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/keyladder/internal/model"
)

// ErrUnknownLanguage is returned when no corpus is registered for a language.
var ErrUnknownLanguage = errors.New("unknown corpus language")

// DefaultLang is the language of the embedded corpus.
const DefaultLang = "en"

//go:embed data/en.yaml
var defaultEnglish []byte

// Set is the corpus for one language.
type Set struct {
	Words      []string                    `yaml:"words"`
	Sentences  map[model.Category][]string `yaml:"sentences"`
	Paragraphs map[model.Category][]string `yaml:"paragraphs"`
	CodeLines  []string                    `yaml:"code_lines"`
}

// Library maps languages to corpus sets.
type Library struct {
	sets map[string]*Set
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{sets: map[string]*Set{}}
}

// Default returns a library holding the embedded English corpus.
func Default() *Library {
	lib := NewLibrary()
	set, err := ParseYAML(defaultEnglish)
	if err != nil {
		panic(fmt.Sprintf("embedded corpus is invalid: %v", err))
	}
	lib.Merge(DefaultLang, set)
	return lib
}

// ParseYAML decodes a corpus set from YAML.
func ParseYAML(data []byte) (Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return Set{}, fmt.Errorf("failed to decode corpus: %w", err)
	}
	set.normalize()
	return set, nil
}

// Merge appends set to the corpus registered for lang.
func (l *Library) Merge(lang string, set Set) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	cur, ok := l.sets[lang]
	if !ok {
		cur = &Set{}
		l.sets[lang] = cur
	}
	cur.Words = appendUnique(cur.Words, set.Words)
	cur.CodeLines = appendUnique(cur.CodeLines, set.CodeLines)
	for cat, items := range set.Sentences {
		if cur.Sentences == nil {
			cur.Sentences = map[model.Category][]string{}
		}
		cur.Sentences[cat] = appendUnique(cur.Sentences[cat], items)
	}
	for cat, items := range set.Paragraphs {
		if cur.Paragraphs == nil {
			cur.Paragraphs = map[model.Category][]string{}
		}
		cur.Paragraphs[cat] = appendUnique(cur.Paragraphs[cat], items)
	}
}

// Lang returns the corpus for lang.
func (l *Library) Lang(lang string) (*Set, error) {
	set, ok := l.sets[strings.ToLower(strings.TrimSpace(lang))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	return set, nil
}

// LangOrDefault returns the corpus for lang, falling back to the default language.
func (l *Library) LangOrDefault(lang string) *Set {
	if set, err := l.Lang(lang); err == nil {
		return set
	}
	if set, err := l.Lang(DefaultLang); err == nil {
		return set
	}
	return &Set{}
}

// Languages lists the registered languages in sorted order.
func (l *Library) Languages() []string {
	out := make([]string, 0, len(l.sets))
	for lang := range l.sets {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// ParagraphsFor returns the long-form texts of a category. CategoryAll is the union of all
// three; code paragraphs fall back to blocks of consecutive code lines.
func (s *Set) ParagraphsFor(cat model.Category) []string {
	switch cat {
	case model.CategoryAll:
		var out []string
		for _, c := range []model.Category{model.CategoryGeneral, model.CategoryBusiness, model.CategoryCode} {
			out = append(out, s.ParagraphsFor(c)...)
		}
		return out
	case model.CategoryCode:
		if items := s.Paragraphs[model.CategoryCode]; len(items) > 0 {
			return items
		}
		return codeBlocks(s.CodeLines, 4)
	case model.CategoryNone:
		return s.Paragraphs[model.CategoryGeneral]
	default:
		return s.Paragraphs[cat]
	}
}

// AllParagraphs returns every paragraph of every category.
func (s *Set) AllParagraphs() []string {
	return s.ParagraphsFor(model.CategoryAll)
}

// AllSentences returns the union of every sentence list, code lines included.
func (s *Set) AllSentences() []string {
	var out []string
	for _, c := range []model.Category{model.CategoryGeneral, model.CategoryBusiness, model.CategoryCode} {
		out = append(out, s.Sentences[c]...)
	}
	return append(out, s.CodeLines...)
}

func (s *Set) normalize() {
	s.Words = trimAll(s.Words)
	s.CodeLines = trimAll(s.CodeLines)
	for cat, items := range s.Sentences {
		s.Sentences[cat] = trimAll(items)
	}
	for cat, items := range s.Paragraphs {
		out := make([]string, 0, len(items))
		for _, p := range items {
			p = strings.TrimRight(p, " \n")
			if cat != model.CategoryCode {
				p = strings.Join(strings.Fields(p), " ")
			}
			if p != "" {
				out = append(out, p)
			}
		}
		s.Paragraphs[cat] = out
	}
}

func codeBlocks(lines []string, size int) []string {
	var out []string
	for i := 0; i < len(lines); i += size {
		end := i + size
		if end > len(lines) {
			end = len(lines)
		}
		out = append(out, strings.Join(lines[i:end], "\n"))
	}
	return out
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, item := range dst {
		seen[item] = struct{}{}
	}
	for _, item := range src {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		dst = append(dst, item)
	}
	return dst
}
