// Package drill runs typing sessions in a plain terminal without a full-screen UI.
package drill

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/verte-zerg/keyladder/internal/generator"
	"github.com/verte-zerg/keyladder/internal/input"
	"github.com/verte-zerg/keyladder/internal/model"
	"github.com/verte-zerg/keyladder/internal/session"
)

// window is how many characters of the tape are shown on the drill line.
const window = 60

// KeySource delivers raw key presses.
type KeySource interface {
	GetKey() (rune, keyboard.Key, error)
}

// Recorder persists finished sessions.
type Recorder interface {
	InsertSession(ctx context.Context, rec model.SessionRecord) (int64, string, error)
}

// Keyboard reads keys from the controlling terminal in raw mode.
type Keyboard struct{}

// OpenKeyboard switches the terminal to raw input.
func OpenKeyboard() (*Keyboard, error) {
	if err := keyboard.Open(); err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	return &Keyboard{}, nil
}

// GetKey blocks until the next key press.
func (k *Keyboard) GetKey() (rune, keyboard.Key, error) {
	return keyboard.GetKey()
}

// Close restores the terminal.
func (k *Keyboard) Close() error {
	return keyboard.Close()
}

// Options configure a Runner. Recorder, Logger and Clock are optional.
type Options struct {
	Config    model.Config
	Stage     model.Stage
	Mix       generator.Mix
	Generator *generator.Generator
	Recorder  Recorder
	Logger    *zap.SugaredLogger
	Clock     func() time.Time
}

// Runner drives sessions from a KeySource and draws them on a single terminal line.
type Runner struct {
	opts Options
	keys KeySource
	out  *termenv.Output
	log  *zap.SugaredLogger
	sess *session.Session

	typed   termenv.Style
	missed  termenv.Style
	cursor  termenv.Style
	pending termenv.Style
}

// NewRunner builds a Runner writing to w.
func NewRunner(keys KeySource, w io.Writer, opts Options) *Runner {
	out := termenv.NewOutput(w)
	r := &Runner{
		opts:    opts,
		keys:    keys,
		out:     out,
		log:     opts.Logger,
		typed:   out.String().Foreground(out.Color("#F0F0F0")),
		missed:  out.String().Foreground(out.Color("#E0A030")),
		cursor:  out.String().Underline(),
		pending: out.String().Foreground(out.Color("#8C8C8C")),
	}
	if r.log == nil {
		r.log = zap.NewNop().Sugar()
	}
	if r.opts.Clock == nil {
		r.opts.Clock = time.Now
	}
	if r.opts.Generator == nil {
		r.opts.Generator = generator.New(generator.WithSeed(opts.Config.Seed), generator.WithLogger(r.log))
	}
	return r
}

// Run plays rounds sessions, or until Esc or Ctrl+C when rounds is zero or the session is
// endless. Disqualified attempts restart and do not count as rounds. It returns the
// statistics of every finished or abandoned session.
func (r *Runner) Run(ctx context.Context, rounds int) ([]model.GameStats, error) {
	var results []model.GameStats
	var supplier *generator.ChunkSupplier
	if r.opts.Config.Endless {
		supplier = generator.NewChunkSupplier(r.opts.Generator, r.opts.Stage, r.opts.Mix)
	}
	for done := 0; rounds <= 0 || done < rounds; {
		sess := r.newSession(supplier)
		if sess.State() == session.Terminal {
			return results, fmt.Errorf("no practice text for stage %d level %d", r.opts.Stage.ID, r.opts.Config.Level)
		}
		quit, err := r.play(ctx, sess)
		if sess.Counters().Keystrokes > 0 {
			st := sess.Stats()
			results = append(results, st)
			r.record(ctx, sess)
			r.printResult(sess.Reason(), st)
		}
		if err != nil {
			return results, err
		}
		if quit {
			return results, nil
		}
		if sess.Reason() == model.EndDisqualified {
			r.println("Mistake! Restarting with fresh text.")
			continue
		}
		done++
	}
	return results, nil
}

func (r *Runner) newSession(supplier *generator.ChunkSupplier) *session.Session {
	cfg := r.opts.Config
	opts := session.Options{
		ZeroMistakes: cfg.ZeroMistakes,
		Lang:         cfg.Lang,
		Clock:        r.opts.Clock,
		Logger:       r.log,
	}
	text := ""
	if supplier != nil {
		opts.Source = supplier
	} else {
		text = r.opts.Generator.Level(r.opts.Stage, cfg.Level, cfg.Lang)
	}
	r.sess = session.New(text, opts)
	return r.sess
}

// play feeds keys into sess until it ends. quit reports an abandon request.
func (r *Runner) play(ctx context.Context, sess *session.Session) (quit bool, err error) {
	r.draw(sess)
	for sess.State() != session.Terminal {
		if err := ctx.Err(); err != nil {
			sess.Abandon()
			return true, err
		}
		ch, key, err := r.keys.GetKey()
		if err != nil {
			sess.Abandon()
			return true, fmt.Errorf("failed to read key: %w", err)
		}
		if key == keyboard.KeyEsc || key == keyboard.KeyCtrlC {
			sess.Abandon()
			r.println("")
			return true, nil
		}
		ev, ok := input.FromKeyboard(ch, key)
		if !ok {
			continue
		}
		sess.Press(ev)
		r.draw(sess)
	}
	r.println("")
	return false, nil
}

func (r *Runner) record(ctx context.Context, sess *session.Session) {
	if r.opts.Recorder == nil {
		return
	}
	cfg := r.opts.Config
	rec := model.SessionRecord{
		StartedAt:     sess.StartedAt(),
		EndedAt:       sess.EndedAt(),
		Lang:          cfg.Lang,
		Stage:         r.opts.Stage.ID,
		Level:         cfg.Level,
		Endless:       cfg.Endless,
		ZeroMistakes:  cfg.ZeroMistakes,
		Reason:        sess.Reason(),
		ConsumedChars: sess.Counters().Consumed + sess.Cursor(),
		Stats:         sess.Stats(),
	}
	if _, _, err := r.opts.Recorder.InsertSession(ctx, rec); err != nil {
		r.log.Errorw("failed to save session", "err", err)
	}
}

// draw redraws the drill line: a window of the tape around the cursor.
func (r *Runner) draw(sess *session.Session) {
	buffer := sess.Buffer()
	cursor := sess.Cursor()
	start := max(0, cursor-window/3)
	end := min(len(buffer), start+window)

	var b strings.Builder
	for i := start; i < end; i++ {
		ch := visible(buffer[i])
		switch {
		case i < cursor && sess.Missed(i):
			b.WriteString(r.missed.Styled(ch))
		case i < cursor:
			b.WriteString(r.typed.Styled(ch))
		case i == cursor:
			b.WriteString(r.cursor.Styled(ch))
		default:
			b.WriteString(r.pending.Styled(ch))
		}
	}
	r.out.ClearLine()
	r.print("\r" + b.String() + fmt.Sprintf("  %d wpm", sess.LiveWPM()))
}

func visible(ch rune) string {
	switch ch {
	case '\n':
		return "⏎"
	case '\t':
		return "→"
	default:
		return string(ch)
	}
}

func (r *Runner) printResult(reason model.EndReason, st model.GameStats) {
	r.println(fmt.Sprintf("%s: %d wpm, %d%% accuracy, %d errors, %.1fs",
		reason, st.WPM, st.Accuracy, st.Errors, st.ElapsedSeconds))
}

func (r *Runner) print(s string) {
	if _, err := r.out.WriteString(s); err != nil {
		// Best-effort terminal output.
		_ = err
	}
}

func (r *Runner) println(s string) {
	r.print(s + "\r\n")
}
