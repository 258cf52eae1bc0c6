// Package session runs the interactive editing model: one goroutine owns the
// caption, color and source state, and every input reaches it as an event.
//
// Image decodes run on their own goroutines and report back through the same
// event queue. Nothing is cancelled when a newer image is chosen: whichever
// decode completes last becomes the source.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gorewood/meme/internal/compose"
	"github.com/gorewood/meme/internal/gallery"
	"github.com/gorewood/meme/internal/logging"
	"github.com/gorewood/meme/internal/source"
)

// ErrClosed is returned for events posted after Run has returned.
var ErrClosed = errors.New("session closed")

// Snapshot is a copy of the editing state taken on the loop.
type Snapshot struct {
	Source     string           `json:"source,omitempty"`
	SourceSeq  uint64           `json:"source_seq,omitempty"`
	Width      int              `json:"width,omitempty"`
	Height     int              `json:"height,omitempty"`
	Captions   compose.Captions `json:"captions"`
	Style      compose.Style    `json:"style"`
	Layout     *compose.Layout  `json:"layout,omitempty"`
	Pending    int              `json:"pending"`
	Exportable bool             `json:"exportable"`
}

// Option configures a Session.
type Option func(*Session)

// WithStyle sets the initial caption colors.
func WithStyle(style compose.Style) Option {
	return func(s *Session) { s.state.Style = style }
}

// WithGallery sets the gallery LoadTemplate resolves indexes against.
func WithGallery(g *gallery.Gallery) Option {
	return func(s *Session) { s.gallery = g }
}

// WithOpener replaces how a named path becomes a decode. Tests use it to
// control when each decode completes.
func WithOpener(open func(name, path string) source.Opener) Option {
	return func(s *Session) { s.open = open }
}

type event func(ctx context.Context)

// Session is the single-threaded editing loop. Create it with New, start it
// with Run, then drive it through the exported methods from any goroutine.
type Session struct {
	comp    *compose.Compositor
	gallery *gallery.Gallery
	open    func(name, path string) source.Opener

	events    chan event
	done      chan struct{}
	startOnce sync.Once

	// Owned by the loop goroutine.
	state     compose.State
	sourceSeq uint64
	seq       uint64
	pending   int
}

// New returns a session rendering through comp.
func New(comp *compose.Compositor, opts ...Option) *Session {
	s := &Session{
		comp:   comp,
		open:   source.NamedFileOpener,
		events: make(chan event),
		done:   make(chan struct{}),
		state:  compose.NewState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes events until ctx ends. It must be called exactly once.
func (s *Session) Run(ctx context.Context) error {
	started := false
	s.startOnce.Do(func() { started = true })
	if !started {
		return errors.New("session already running")
	}
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			ev(ctx)
		}
	}
}

// post hands ev to the loop. It returns once the loop has accepted it.
func (s *Session) post(ctx context.Context, ev event) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call runs fn on the loop and waits for it to finish.
func (s *Session) call(ctx context.Context, fn func(ctx context.Context)) error {
	finished := make(chan struct{})
	err := s.post(ctx, func(loopCtx context.Context) {
		defer close(finished)
		fn(loopCtx)
	})
	if err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// SetCaption replaces the text of one caption and re-renders.
func (s *Session) SetCaption(ctx context.Context, slot compose.Slot, text string) error {
	return s.call(ctx, func(context.Context) {
		s.state.Captions = s.state.Captions.Set(slot, text)
		s.render("caption")
	})
}

// SetColor replaces one caption color and re-renders.
func (s *Session) SetColor(ctx context.Context, slot compose.Slot, part compose.Part, c compose.RGB) error {
	return s.call(ctx, func(context.Context) {
		s.state.Style = s.state.Style.Set(slot, part, c)
		s.render("color")
	})
}

// LoadFile starts decoding the image at path, named after the file. The
// returned attempt can be waited on; the session keeps working while it runs.
func (s *Session) LoadFile(ctx context.Context, path string) (*Attempt, error) {
	return s.load(ctx, filepath.Base(path), path)
}

// LoadTemplate starts decoding the gallery template at the 1-based index.
func (s *Session) LoadTemplate(ctx context.Context, index int) (*Attempt, error) {
	if s.gallery == nil {
		return nil, fmt.Errorf("%w: no gallery configured", gallery.ErrNoSuchTemplate)
	}
	tmpl, err := s.gallery.Lookup(index)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, tmpl.Name, tmpl.Path)
}

func (s *Session) load(ctx context.Context, name, path string) (*Attempt, error) {
	attempt := &Attempt{applied: make(chan struct{})}
	err := s.call(ctx, func(loopCtx context.Context) {
		s.seq++
		s.pending++
		logging.Logger().Debug("decode started", "seq", s.seq, "name", name)
		attempt.Load = source.Start(loopCtx, s.seq, name, s.open(name, path), s.complete(attempt))
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// complete returns the settle callback of a decode. It runs on the decode
// goroutine and forwards the result to the loop.
func (s *Session) complete(attempt *Attempt) func(*source.Load) {
	return func(load *source.Load) {
		err := s.post(context.Background(), func(context.Context) {
			defer close(attempt.applied)
			s.pending--
			img, err := load.Result()
			if err != nil {
				logging.Logger().Warn("image decode failed", "seq", load.Seq, "name", load.Name, "error", err)
				return
			}
			if load.Seq < s.sourceSeq {
				logging.Logger().Debug("older decode finished last", "seq", load.Seq, "replacing", s.sourceSeq)
			}
			s.state.Source = img
			s.sourceSeq = load.Seq
			s.render("source")
		})
		if err != nil {
			close(attempt.applied)
		}
	}
}

// Export writes the current preview to path and returns the path written.
// Before any image is set it does nothing and returns "".
func (s *Session) Export(ctx context.Context, path string) (string, error) {
	var (
		written string
		err     error
	)
	callErr := s.call(ctx, func(context.Context) {
		if !s.state.HasSource() {
			return
		}
		written, err = s.comp.ExportFile(path)
	})
	if callErr != nil {
		return "", callErr
	}
	return written, err
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.call(ctx, func(context.Context) {
		snap = Snapshot{
			Captions:   s.state.Captions,
			Style:      s.state.Style,
			Pending:    s.pending,
			Exportable: s.state.HasSource(),
		}
		if src := s.state.Source; src != nil {
			snap.Source = src.Name()
			snap.SourceSeq = s.sourceSeq
			snap.Width, snap.Height = compose.CanvasSize(src.Width(), src.Height())
			if p := s.comp.Preview(); p != nil {
				snap.Layout = p.Layout
			}
		}
	})
	return snap, err
}

// render redraws after a change. Without a source there is nothing to draw.
func (s *Session) render(reason string) {
	if !s.state.HasSource() {
		return
	}
	if _, err := s.comp.Render(s.state); err != nil {
		logging.Logger().Error("render failed", "reason", reason, "error", err)
		return
	}
	logging.Logger().Debug("re-rendered", "reason", reason, "source_seq", s.sourceSeq)
}

// Attempt is one image load started through the session.
type Attempt struct {
	*source.Load
	applied chan struct{}
}

// Wait blocks until the decode result has been handled by the loop and
// returns the decode error, if any.
func (a *Attempt) Wait(ctx context.Context) error {
	select {
	case <-a.applied:
		_, err := a.Result()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
