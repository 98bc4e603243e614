package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/verte-zerg/keyladder/internal/model"
	"github.com/verte-zerg/keyladder/internal/wordlist"
)

// LoadDir merges every corpus file found in dir into l. Files are named after their language:
// <lang>.yaml, <lang>.lua or <lang>.txt (a plain word list). A missing dir is not an error.
func LoadDir(l *Library, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}
	var loaded []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		lang := strings.TrimSuffix(name, ext)
		path := filepath.Join(dir, name)
		var set Set
		switch ext {
		case ".yaml", ".yml":
			set, err = LoadYAMLFile(path)
		case ".lua":
			set, err = LoadLua(path)
		case ".txt":
			var words []string
			words, err = wordlist.LoadWords(path, wordlist.FilterForLang(lang))
			set = Set{Words: words}
		default:
			continue
		}
		if err != nil {
			return loaded, err
		}
		l.Merge(lang, set)
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// LoadYAMLFile reads a YAML corpus file.
func LoadYAMLFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("failed to read corpus: %w", err)
	}
	set, err := ParseYAML(data)
	if err != nil {
		return Set{}, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// LoadLua runs a corpus script. The script either returns a table or assigns the global
// `corpus`, with the keys words, sentences, paragraphs and code_lines.
func LoadLua(path string) (Set, error) {
	L := lua.NewState()
	defer L.Close()

	top := L.GetTop()
	if err := L.DoFile(path); err != nil {
		return Set{}, fmt.Errorf("failed to run corpus script %s: %w", path, err)
	}
	var root *lua.LTable
	if L.GetTop() > top {
		root, _ = L.Get(-1).(*lua.LTable)
	}
	if root == nil {
		root, _ = L.GetGlobal("corpus").(*lua.LTable)
	}
	if root == nil {
		return Set{}, fmt.Errorf("corpus script %s defines no corpus table", path)
	}
	set := Set{
		Words:      luaStrings(root.RawGetString("words")),
		CodeLines:  luaStrings(root.RawGetString("code_lines")),
		Sentences:  luaCategories(root.RawGetString("sentences")),
		Paragraphs: luaCategories(root.RawGetString("paragraphs")),
	}
	set.normalize()
	return set, nil
}

func luaStrings(v lua.LValue) []string {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	tbl.ForEach(func(_, value lua.LValue) {
		if s, ok := value.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}

func luaCategories(v lua.LValue) map[model.Category][]string {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	out := map[model.Category][]string{}
	tbl.ForEach(func(key, value lua.LValue) {
		name, ok := key.(lua.LString)
		if !ok {
			return
		}
		out[model.Category(strings.ToLower(string(name)))] = luaStrings(value)
	})
	return out
}
