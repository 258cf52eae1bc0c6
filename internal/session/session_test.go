package session

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorewood/meme/internal/compose"
	"github.com/gorewood/meme/internal/gallery"
	"github.com/gorewood/meme/internal/source"
)

// gate is a decode that completes only when told to.
type gate struct {
	release chan struct{}
	img     *source.Image
	err     error
}

// gatedOpener serves every path from gates; unknown paths fail at once.
func gatedOpener(gates map[string]*gate) func(string, string) source.Opener {
	return func(_, path string) source.Opener {
		return func(ctx context.Context) (*source.Image, error) {
			g, ok := gates[path]
			if !ok {
				return nil, errors.New("unknown path " + path)
			}
			select {
			case <-g.release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return g.img, g.err
		}
	}
}

func blank(t *testing.T, name string, w, h int) *source.Image {
	t.Helper()
	img, err := source.New(name, image.NewRGBA(image.Rect(0, 0, w, h)))
	if err != nil {
		t.Fatal(err)
	}
	return img
}

// start runs a session for the duration of the test.
func start(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s := New(compose.New(), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errc
	})
	return s
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSession_LastCompletionWins(t *testing.T) {
	gates := map[string]*gate{
		"a.png": {release: make(chan struct{})},
		"b.png": {release: make(chan struct{})},
	}
	gates["a.png"].img = blank(t, "a.png", 300, 200)
	gates["b.png"].img = blank(t, "b.png", 100, 100)

	s := start(t, WithOpener(gatedOpener(gates)))
	ctx := waitCtx(t)

	first, err := s.LoadFile(ctx, "a.png")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.LoadFile(ctx, "b.png")
	if err != nil {
		t.Fatal(err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Pending != 2 || snap.Source != "" {
		t.Fatalf("before completion: pending=%d source=%q", snap.Pending, snap.Source)
	}

	// The newer load finishes first, then the older one overwrites it.
	close(gates["b.png"].release)
	if err := second.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	snap, _ = s.Snapshot(ctx)
	if snap.Source != "b.png" {
		t.Fatalf("after b: source = %q, want b.png", snap.Source)
	}

	close(gates["a.png"].release)
	if err := first.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	snap, _ = s.Snapshot(ctx)
	if snap.Source != "a.png" || snap.SourceSeq != first.Seq {
		t.Errorf("after a: source = %q seq %d, want a.png seq %d", snap.Source, snap.SourceSeq, first.Seq)
	}
	if snap.Width != 300 || snap.Height != 200 || snap.Pending != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSession_FailedDecodeKeepsState(t *testing.T) {
	gates := map[string]*gate{
		"good.png": {release: make(chan struct{}), img: blank(t, "good.png", 50, 50)},
		"bad.png":  {release: make(chan struct{}), err: source.ErrUnsupportedFormat},
	}
	close(gates["good.png"].release)
	close(gates["bad.png"].release)

	s := start(t, WithOpener(gatedOpener(gates)))
	ctx := waitCtx(t)

	good, err := s.LoadFile(ctx, "good.png")
	if err != nil {
		t.Fatal(err)
	}
	if err := good.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	bad, err := s.LoadFile(ctx, "bad.png")
	if err != nil {
		t.Fatal(err)
	}
	if err := bad.Wait(ctx); !errors.Is(err, source.ErrUnsupportedFormat) {
		t.Fatalf("Wait() error = %v, want ErrUnsupportedFormat", err)
	}
	if bad.State() != source.StateFailed {
		t.Errorf("State() = %v, want failed", bad.State())
	}

	snap, _ := s.Snapshot(ctx)
	if snap.Source != "good.png" {
		t.Errorf("source = %q, want good.png kept", snap.Source)
	}
}

func TestSession_CaptionsAndColorsRerender(t *testing.T) {
	gates := map[string]*gate{"pic.png": {release: make(chan struct{}), img: blank(t, "pic.png", 1000, 500)}}
	close(gates["pic.png"].release)
	comp := compose.New()
	s := New(comp, WithOpener(gatedOpener(gates)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	// Edits before a source are kept but draw nothing.
	if err := s.SetCaption(ctx, compose.Top, "  hello  "); err != nil {
		t.Fatal(err)
	}
	if comp.Preview() != nil {
		t.Fatal("caption without a source should not render")
	}

	a, err := s.LoadFile(ctx, "pic.png")
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	first := comp.Preview()
	if first == nil {
		t.Fatal("source load should render")
	}
	if got := first.Layout.Lines(compose.Top); len(got) != 1 || got[0] != "hello" {
		t.Errorf("top lines = %q", got)
	}

	red := compose.RGB{R: 0xFF}
	if err := s.SetColor(ctx, compose.Top, compose.Stroke, red); err != nil {
		t.Fatal(err)
	}
	second := comp.Preview()
	if second == first {
		t.Error("color change should re-render")
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Style.Top.Stroke != red || snap.Style.Bottom.Stroke != compose.Black {
		t.Errorf("style = %+v", snap.Style)
	}
	if snap.Width != 800 || snap.Height != 400 || snap.Layout == nil {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSession_ExportWithoutSourceIsNoop(t *testing.T) {
	s := start(t)
	ctx := waitCtx(t)
	dir := t.TempDir()

	written, err := s.Export(ctx, dir)
	if err != nil || written != "" {
		t.Errorf("Export() = %q, %v, want no-op", written, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("export left %d file(s)", len(entries))
	}
}

func TestSession_LoadTemplateAndExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tmpl.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 64, 48))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	g := gallery.New([]gallery.Entry{{Name: "Only", Path: path}})
	s := start(t, WithGallery(g), WithStyle(compose.DefaultStyle().Set(compose.Bottom, compose.Fill, compose.RGB{B: 0xFF})))
	ctx := waitCtx(t)

	if _, err := s.LoadTemplate(ctx, 2); !errors.Is(err, gallery.ErrNoSuchTemplate) {
		t.Fatalf("LoadTemplate(2) error = %v, want ErrNoSuchTemplate", err)
	}
	a, err := s.LoadTemplate(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if a.Name != "Only" {
		t.Errorf("attempt name = %q", a.Name)
	}

	out := filepath.Join(dir, "out.png")
	written, err := s.Export(ctx, out)
	if err != nil {
		t.Fatal(err)
	}
	if written != out {
		t.Errorf("Export() = %q, want %q", written, out)
	}
	if _, err := source.Open(out); err != nil {
		t.Errorf("exported file does not decode: %v", err)
	}

	snap, _ := s.Snapshot(ctx)
	if snap.Style.Bottom.Fill != (compose.RGB{B: 0xFF}) {
		t.Errorf("initial style not applied: %+v", snap.Style)
	}
}

func TestSession_ClosedAfterRun(t *testing.T) {
	s := New(compose.New())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}

	if err := s.SetCaption(context.Background(), compose.Top, "late"); !errors.Is(err, ErrClosed) {
		t.Errorf("SetCaption() after Run = %v, want ErrClosed", err)
	}
	if _, err := s.Snapshot(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Snapshot() after Run = %v, want ErrClosed", err)
	}
	if err := s.Run(context.Background()); err == nil {
		t.Error("second Run() should fail")
	}
}

func TestSession_NoGallery(t *testing.T) {
	s := start(t)
	if _, err := s.LoadTemplate(waitCtx(t), 1); !errors.Is(err, gallery.ErrNoSuchTemplate) {
		t.Errorf("LoadTemplate() error = %v", err)
	}
}
