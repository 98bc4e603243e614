package config

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// EditorCommand splits an $EDITOR value shell-style and appends path. An empty editor
// falls back to vi.
func EditorCommand(editor, path string) ([]string, error) {
	editor = strings.TrimSpace(editor)
	if editor == "" {
		editor = "vi"
	}
	parts, err := shlex.Split(editor)
	if err != nil {
		return nil, fmt.Errorf("failed to parse editor command: %w", err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("editor command is empty")
	}
	return append(parts, path), nil
}
