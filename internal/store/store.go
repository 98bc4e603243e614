// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/keyladder/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout stores UTC timestamps at a fixed width so text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			lang TEXT NOT NULL,
			stage INTEGER NOT NULL,
			level INTEGER NOT NULL,
			endless INTEGER NOT NULL,
			zero_mistakes INTEGER NOT NULL,
			end_reason TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			total_chars INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			consumed_chars INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_errors (
			session_id INTEGER NOT NULL,
			char TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (session_id, char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_stage ON sessions(stage, level);`,
		`CREATE INDEX IF NOT EXISTS idx_session_errors_char ON session_errors(char);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session and its error histogram. It returns the row id
// and the generated session uuid.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) (id int64, sessionUUID string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	sessionUUID = uuid.NewString()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (uuid, started_at, ended_at, lang, stage, level, endless, zero_mistakes, end_reason, wpm, accuracy, errors, total_chars, elapsed_ms, consumed_chars)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionUUID,
		formatTime(rec.StartedAt),
		formatTime(rec.EndedAt),
		rec.Lang,
		rec.Stage,
		rec.Level,
		boolInt(rec.Endless),
		boolInt(rec.ZeroMistakes),
		string(rec.Reason),
		rec.Stats.WPM,
		rec.Stats.Accuracy,
		rec.Stats.Errors,
		rec.Stats.TotalChars,
		int64(rec.Stats.ElapsedSeconds*1000),
		rec.ConsumedChars,
	)
	if err != nil {
		return 0, "", err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, "", err
	}

	if len(rec.Stats.ErrorHistogram) > 0 {
		stmt, perr := tx.PrepareContext(ctx, `INSERT INTO session_errors (session_id, char, count) VALUES (?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		chars := make([]string, 0, len(rec.Stats.ErrorHistogram))
		for ch := range rec.Stats.ErrorHistogram {
			chars = append(chars, ch)
		}
		sort.Strings(chars)
		for _, ch := range chars {
			if _, err = stmt.ExecContext(ctx, id, ch, rec.Stats.ErrorHistogram[ch]); err != nil {
				return 0, "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, "", err
	}
	return id, sessionUUID, nil
}

// RecentErrors aggregates mistyped characters over the most recent sessions.
func (s *Store) RecentErrors(ctx context.Context, window int, lang string) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR lang = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT e.char, SUM(e.count) AS errors
	FROM session_errors e
	JOIN recent_sessions r ON r.id = e.session_id
	GROUP BY e.char
	ORDER BY errors DESC, e.char ASC`

	rows, err := s.db.QueryContext(ctx, query, lang, lang, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanCharAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, cfg.Lang)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	if cfg.Stage > 0 {
		clauses = append(clauses, "stage = ?")
		args = append(args, cfg.Stage)
	}
	query := fmt.Sprintf(`SELECT id, uuid, ended_at, stage, level, end_reason, wpm, accuracy, errors, total_chars, elapsed_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt, reason string
		if err := rows.Scan(&agg.SessionID, &agg.UUID, &endedAt, &agg.Stage, &agg.Level, &reason,
			&agg.WPM, &agg.Accuracy, &agg.Errors, &agg.TotalChars, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Reason = model.EndReason(reason)
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return sessions, nil
}

// ListErrorAggregates sums the error histograms of the given sessions.
func (s *Store) ListErrorAggregates(ctx context.Context, sessionIDs []int64) ([]model.CharAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT char, SUM(count) AS errors
		FROM session_errors
		WHERE session_id IN (%s)
		GROUP BY char
		ORDER BY errors DESC, char ASC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanCharAggregates(rows)
}

// BestByStage returns, per stage and level, the best completed run and the number of runs.
func (s *Store) BestByStage(ctx context.Context, lang string) ([]model.StageBest, error) {
	query := `SELECT stage, level,
		MAX(CASE WHEN end_reason = ? THEN wpm ELSE 0 END) AS best_wpm,
		MAX(CASE WHEN end_reason = ? THEN accuracy ELSE 0 END) AS best_acc,
		COUNT(*) AS runs
	FROM sessions
	WHERE (? = '' OR lang = ?)
	GROUP BY stage, level
	ORDER BY stage ASC, level ASC`
	done := string(model.EndCompleted)
	rows, err := s.db.QueryContext(ctx, query, done, done, lang, lang)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.StageBest
	for rows.Next() {
		var b model.StageBest
		if err := rows.Scan(&b.Stage, &b.Level, &b.WPM, &b.Accuracy, &b.Runs); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanCharAggregates(rows *sql.Rows) ([]model.CharAggregate, error) {
	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Errors); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
