package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/keyladder/internal/model"
)

// Source is the subset of the store that reports read from.
type Source interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	ListErrorAggregates(ctx context.Context, sessionIDs []int64) ([]model.CharAggregate, error)
	BestByStage(ctx context.Context, lang string) ([]model.StageBest, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	ErrorsAll        []model.CharAggregate
	ErrorsWindow     []model.CharAggregate
	Best             []model.StageBest
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}

	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	errorsAll, err := src.ListErrorAggregates(ctx, sessionIDs(sessions))
	if err != nil {
		return Report{}, err
	}
	errorsWindow, err := src.ListErrorAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}
	best, err := src.BestByStage(ctx, cfg.Lang)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		ErrorsAll:        errorsAll,
		ErrorsWindow:     errorsWindow,
		Best:             best,
	}, nil
}

// Render writes the full plain-text report.
// window is the moving-average size, width the terminal width and top the error-table length.
func (r Report) Render(w io.Writer, window int, names map[int]string, width, top int) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if len(r.Sessions) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Sessions, window, CurveWidthFor(width)); err != nil {
		return err
	}
	if err := RenderStageTable(w, r.Best, names); err != nil {
		return err
	}
	return RenderErrorTable(w, r.ErrorsWindow, top)
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
