package stats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keyladder/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Char", "Errors", "Share"}
	rows := [][]string{
		{"a", "12", "97.5%"},
		{"<space>", "3", "8.0%"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true, 2: true})
	assert.Equal(t, []string{
		"Char    Errors Share",
		"a           12 97.5%",
		"<space>      3  8.0%",
	}, lines)
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"C", "N"}, [][]string{{"日", "1"}, {"a", "2"}}, nil)
	assert.Equal(t, []string{"C  N", "日 1", "a  2"}, lines)
}

func TestErrorRows(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: " ", Errors: 1},
		{Char: "f", Errors: 6},
		{Char: "J", Errors: 3},
	}
	rows := ErrorRows(aggs, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, ErrorRow{Label: "f", Finger: "L index", Errors: 6, Share: 60}, rows[0])
	assert.Equal(t, "R index", rows[1].Finger)

	all := ErrorRows(aggs, 0)
	require.Len(t, all, 3)
	assert.Equal(t, "<space>", all[2].Label)
	assert.Equal(t, "thumb", all[2].Finger)
}

func TestRenderErrorTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderErrorTable(&buf, nil, 5))
	assert.Equal(t, "No mistyped characters recorded.\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderErrorTable(&buf, []model.CharAggregate{{Char: "q", Errors: 2}}, 5))
	assert.Contains(t, buf.String(), "L pinky")
	assert.Contains(t, buf.String(), "100.0%")
}

func TestRenderStageTable(t *testing.T) {
	var buf bytes.Buffer
	best := []model.StageBest{{Stage: 3, Level: 2, WPM: 41, Accuracy: 97, Runs: 4}}
	require.NoError(t, RenderStageTable(&buf, best, nil))
	assert.Contains(t, buf.String(), "97%")
	assert.Contains(t, buf.String(), " - ")
}
