// Package stages provides the curriculum of typing stages.
package stages

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/keyladder/internal/charpool"
	"github.com/verte-zerg/keyladder/internal/model"
)

// ErrUnknownStage is returned when a stage id is not in the catalog.
var ErrUnknownStage = errors.New("unknown stage")

// Thresholds are the first stage ids at which a generation feature unlocks.
type Thresholds struct {
	Caps    int
	Punct   int
	Mastery int
}

// Step describes what one stage adds to the previous one.
type Step struct {
	Name     string         `toml:"name"`
	New      []string       `toml:"new"`
	Category model.Category `toml:"category"`
}

type fileCatalog struct {
	Stages []Step `toml:"stage"`
}

// Catalog is an ordered list of stages with cumulative character sets.
type Catalog struct {
	stages []model.Stage
}

var builtinSteps = []Step{
	{Name: "Index home keys", New: []string{"f", "j", " "}},
	{Name: "Middle home keys", New: []string{"d", "k"}},
	{Name: "Ring home keys", New: []string{"s", "l"}},
	{Name: "Pinky home keys", New: []string{"a", ";"}},
	{Name: "Index stretch", New: []string{"g", "h"}},
	{Name: "First vowels", New: []string{"e", "i"}},
	{Name: "Top row index", New: []string{"r", "u"}},
	{Name: "Top row reach", New: []string{"t", "y"}},
	{Name: "Top row ring", New: []string{"w", "o"}},
	{Name: "Top row pinky", New: []string{"q", "p"}},
	{Name: "Bottom row middle", New: []string{"c", ","}},
	{Name: "Bottom row index", New: []string{"v", "m"}},
	{Name: "Bottom row ring", New: []string{"x", "."}},
	{Name: "Bottom row reach", New: []string{"b", "n"}},
	{Name: "Bottom row pinky", New: []string{"z", "/"}},
	{Name: "Capitals", New: []string{model.ShiftKey}},
	{Name: "Sentence marks", New: []string{"!", "?", "'", "-", ":"}},
	{Name: "Left digits", New: []string{"1", "2", "3", "4", "5"}},
	{Name: "Right digits", New: []string{"6", "7", "8", "9", "0"}},
	{Name: "Brackets and quotes", New: []string{"(", ")", "\"", "[", "]"}},
	{Name: "Symbols", New: []string{"@", "#", "$", "%", "&", "*", "+", "=", "_", "<", ">", "{", "}", "`", "~", "^", "|", "\\"}},
	{Name: "Prose", Category: model.CategoryGeneral},
	{Name: "Business", Category: model.CategoryBusiness},
	{Name: "Code", New: []string{"\n"}, Category: model.CategoryCode},
	{Name: "Mastery", Category: model.CategoryAll},
	{Name: "Grand mastery", Category: model.CategoryAll},
}

// Default returns the built-in QWERTY curriculum.
func Default() *Catalog {
	cat, err := Build(builtinSteps)
	if err != nil {
		panic(fmt.Sprintf("builtin catalog is invalid: %v", err))
	}
	return cat
}

// LoadFile reads a TOML catalog of [[stage]] tables.
func LoadFile(path string) (*Catalog, error) {
	var fc fileCatalog
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("stage catalog not found: %w", err)
		}
		return nil, fmt.Errorf("failed to decode stage catalog: %w", err)
	}
	return Build(fc.Stages)
}

// Build turns incremental steps into stages with cumulative character sets. Uppercase
// letters are added for every known letter once a step unlocks Shift.
func Build(steps []Step) (*Catalog, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("stage catalog is empty")
	}
	var chars []string
	seen := map[string]struct{}{}
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		chars = append(chars, c)
	}
	shift := false
	cat := &Catalog{stages: make([]model.Stage, 0, len(steps))}
	for i, step := range steps {
		for _, c := range step.New {
			if c == model.ShiftKey {
				shift = true
				continue
			}
			if utf8.RuneCountInString(c) != 1 {
				return nil, fmt.Errorf("stage %d: %q is not a single character", i+1, c)
			}
			add(c)
		}
		if shift {
			for _, c := range append([]string(nil), chars...) {
				if up := strings.ToUpper(c); up != c && utf8.RuneCountInString(up) == 1 {
					add(up)
				}
			}
		}
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("Stage %d", i+1)
		}
		cat.stages = append(cat.stages, model.Stage{
			ID:       i + 1,
			Name:     name,
			Chars:    append([]string(nil), chars...),
			NewChars: append([]string(nil), step.New...),
			Category: step.Category,
		})
	}
	return cat, nil
}

// Stages returns every stage in unlock order.
func (c *Catalog) Stages() []model.Stage {
	return c.stages
}

// Find returns the stage with the given id.
func (c *Catalog) Find(id int) (model.Stage, error) {
	if id < 1 || id > len(c.stages) {
		return model.Stage{}, fmt.Errorf("%w: %d (have 1-%d)", ErrUnknownStage, id, len(c.stages))
	}
	return c.stages[id-1], nil
}

// Last returns the final stage of the catalog.
func (c *Catalog) Last() model.Stage {
	return c.stages[len(c.stages)-1]
}

// Full returns a pseudo-stage with every character of the catalog unlocked and no corpus
// category, used to synthesize open-ended content.
func (c *Catalog) Full() model.Stage {
	last := c.Last()
	return model.Stage{
		ID:    last.ID,
		Name:  "All characters",
		Chars: append([]string(nil), last.Chars...),
	}
}

// Thresholds derives when capitalization, punctuation and curated paragraphs unlock.
// Punctuation counts as unlocked once a sentence can be ended. A feature that never
// unlocks gets a threshold past the last stage.
func (c *Catalog) Thresholds() Thresholds {
	never := len(c.stages) + 1
	th := Thresholds{Caps: never, Punct: never, Mastery: never}
	for _, st := range c.stages {
		if th.Caps == never {
			for _, n := range st.NewChars {
				if n == model.ShiftKey {
					th.Caps = st.ID
				}
			}
		}
		if th.Punct == never {
			for _, ch := range st.Chars {
				if ch != "" && strings.Contains(charpool.Terminal, ch) {
					th.Punct = st.ID
					break
				}
			}
		}
		if th.Mastery == never && st.Category != model.CategoryNone {
			th.Mastery = st.ID
		}
	}
	return th
}
