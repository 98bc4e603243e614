package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keyladder/internal/model"
	"github.com/verte-zerg/keyladder/internal/store"
)

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "keyladder.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		rec := model.SessionRecord{
			StartedAt: start,
			EndedAt:   start.Add(30 * time.Second),
			Lang:      "en",
			Stage:     1,
			Reason:    model.EndCompleted,
			Stats: model.GameStats{
				WPM:            20 + i,
				Accuracy:       90,
				Errors:         i + 1,
				TotalChars:     50,
				ElapsedSeconds: 30,
				ErrorHistogram: map[string]int{"f": 1, "j": i},
			},
		}
		id, _, err := st.InsertSession(ctx, rec)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Lang: "en", Last: 2, CurveWindow: 1})
	require.NoError(t, err)
	require.Len(t, report.Sessions, 2)
	assert.Equal(t, ids[1], report.Sessions[0].SessionID)
	assert.Equal(t, ids[2], report.Sessions[1].SessionID)
	assert.Equal(t, []int64{ids[2]}, report.WindowSessionIDs)
	assert.Equal(t, []model.CharAggregate{{Char: "j", Errors: 3}, {Char: "f", Errors: 2}}, report.ErrorsAll)
	assert.Equal(t, []model.CharAggregate{{Char: "j", Errors: 2}, {Char: "f", Errors: 1}}, report.ErrorsWindow)
	require.Len(t, report.Best, 1)
	assert.Equal(t, 22, report.Best[0].WPM)
	assert.Equal(t, 3, report.Best[0].Runs)

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, 2, map[int]string{1: "Home anchors"}, 80, 5))
	out := buf.String()
	assert.Contains(t, out, "Sessions: 2 (completed 2, disqualified 0, abandoned 0)")
	assert.Contains(t, out, "Learning Curves")
	assert.Contains(t, out, "Home anchors")
	assert.Contains(t, out, "R index")
}

func TestRenderEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report{}.Render(&buf, 5, nil, 80, 5))
	assert.Equal(t, "No sessions found.\n", buf.String())
}
