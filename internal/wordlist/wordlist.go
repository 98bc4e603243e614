// Package wordlist loads word lists from files.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadWords reads one word per line from path, keeping the words accepted by keep.
// A nil keep accepts every non-empty line. Duplicates are dropped.
func LoadWords(path string, keep FilterFunc) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	words, err := ReadWords(file, keep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// ReadWords reads one word per line from r.
func ReadWords(r io.Reader, keep FilterFunc) ([]string, error) {
	var words []string
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if keep != nil && !keep(line) {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}
