package compose

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
)

// near reports whether c is within tol of want on every channel.
func near(c color.RGBA, want color.RGBA, tol int) bool {
	d := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	return d(c.R, want.R) <= tol && d(c.G, want.G) <= tol && d(c.B, want.B) <= tol
}

// countNear counts pixels of img inside r that are close to want.
func countNear(img *image.RGBA, r image.Rectangle, want color.RGBA) int {
	n := 0
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if near(img.RGBAAt(x, y), want, 24) {
				n++
			}
		}
	}
	return n
}

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

func TestDraw_NoSource(t *testing.T) {
	if _, err := Draw(NewState()); !errors.Is(err, ErrNoSource) {
		t.Errorf("Draw() error = %v, want ErrNoSource", err)
	}
}

func TestDraw_Dimensions(t *testing.T) {
	tests := []struct {
		srcW, srcH   int
		wantW, wantH int
	}{
		{srcW: 320, srcH: 200, wantW: 320, wantH: 200},
		{srcW: 1600, srcH: 900, wantW: 800, wantH: 450},
		{srcW: 1000, srcH: 333, wantW: 800, wantH: 266},
	}
	for _, tt := range tests {
		st := NewState()
		st.Source = solidSource(t, tt.srcW, tt.srcH, gray)
		st.Captions = Captions{Top: "top text", Bottom: "bottom text"}

		preview, err := Draw(st)
		if err != nil {
			t.Fatalf("Draw(%dx%d) error = %v", tt.srcW, tt.srcH, err)
		}
		b := preview.Image.Bounds()
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("Draw(%dx%d) = %dx%d, want %dx%d", tt.srcW, tt.srcH, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
		}
		if preview.Layout.Width != tt.wantW || preview.Layout.Height != tt.wantH {
			t.Errorf("layout size = %dx%d", preview.Layout.Width, preview.Layout.Height)
		}
	}
}

func TestDraw_SourceFillsCanvas(t *testing.T) {
	st := NewState()
	st.Source = solidSource(t, 1200, 600, gray)

	preview, err := Draw(st)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	inner := image.Rect(2, 2, preview.Image.Bounds().Dx()-2, preview.Image.Bounds().Dy()-2)
	if got, want := countNear(preview.Image, inner, gray), inner.Dx()*inner.Dy(); got != want {
		t.Errorf("%d of %d interior pixels match the source color", got, want)
	}
}

func TestDraw_Idempotent(t *testing.T) {
	st := NewState()
	st.Source = solidSource(t, 500, 400, gray)
	st.Captions = Captions{Top: "same input", Bottom: "same pixels"}
	st.Style = st.Style.Set(Top, Fill, RGB{R: 0xFF, G: 0x00, B: 0x7F})

	a, err := Draw(st)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	b, err := Draw(st)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if !bytes.Equal(a.Image.Pix, b.Image.Pix) {
		t.Error("two renders of the same state differ")
	}
}

func TestDraw_BlankCaptionIgnoresStyle(t *testing.T) {
	base := NewState()
	base.Source = solidSource(t, 300, 200, gray)

	blank := base
	blank.Captions = Captions{Top: "   ", Bottom: "\t"}
	blank.Style = blank.Style.
		Set(Top, Fill, RGB{R: 0xFF}).
		Set(Bottom, Stroke, RGB{G: 0xFF})

	want, err := Draw(base)
	if err != nil {
		t.Fatalf("Draw(base) error = %v", err)
	}
	got, err := Draw(blank)
	if err != nil {
		t.Fatalf("Draw(blank) error = %v", err)
	}
	if !bytes.Equal(want.Image.Pix, got.Image.Pix) {
		t.Error("blank captions changed the output")
	}
}

func TestDraw_CaptionColors(t *testing.T) {
	st := NewState()
	st.Source = solidSource(t, 1600, 800, gray)
	st.Captions = Captions{Top: "MEME"}

	preview, err := Draw(st)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	img := preview.Image
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	topBand := image.Rect(0, 0, w, h/3)
	bottomBand := image.Rect(0, 2*h/3, w, h)

	if countNear(img, topBand, white) == 0 {
		t.Error("no white fill pixels in the top band")
	}
	if countNear(img, topBand, black) == 0 {
		t.Error("no black stroke pixels in the top band")
	}
	if got := countNear(img, bottomBand, gray); got != bottomBand.Dx()*bottomBand.Dy() {
		t.Errorf("bottom band touched: %d of %d pixels unchanged", got, bottomBand.Dx()*bottomBand.Dy())
	}
}

func TestDraw_CustomColors(t *testing.T) {
	magenta := RGB{R: 0xFF, B: 0xFF}
	st := NewState()
	st.Source = solidSource(t, 1600, 800, gray)
	st.Captions = Captions{Bottom: "MEME"}
	st.Style = st.Style.Set(Bottom, Fill, magenta)

	preview, err := Draw(st)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	img := preview.Image
	h := img.Bounds().Dy()
	bottomBand := image.Rect(0, 2*h/3, img.Bounds().Dx(), h)
	if countNear(img, bottomBand, color.RGBA{R: 255, B: 255, A: 255}) == 0 {
		t.Error("no magenta fill pixels in the bottom band")
	}
	if countNear(img, bottomBand, white) != 0 {
		t.Error("bottom caption still drawn with the default fill")
	}
}

func TestCompositor_RenderKeepsPreview(t *testing.T) {
	c := New()
	if c.Preview() != nil {
		t.Fatal("new compositor should have no preview")
	}

	if _, err := c.Render(NewState()); !errors.Is(err, ErrNoSource) {
		t.Fatalf("Render() error = %v, want ErrNoSource", err)
	}
	if c.Preview() != nil {
		t.Fatal("failed render should not set a preview")
	}

	st := NewState()
	st.Source = solidSource(t, 100, 50, gray)
	p, err := c.Render(st)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if c.Preview() != p {
		t.Error("Preview() should return the last render")
	}

	if _, err := c.Render(NewState()); err == nil {
		t.Fatal("Render() without source should fail")
	}
	if c.Preview() != p {
		t.Error("failed render replaced the previous preview")
	}
}

func TestCompositor_ConcurrentRenders(t *testing.T) {
	c := New()
	st := NewState()
	st.Source = solidSource(t, 200, 100, gray)
	st.Captions = Captions{Top: "race", Bottom: "free"}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Render(st); err != nil {
				t.Errorf("Render() error = %v", err)
			}
		}()
	}
	wg.Wait()
	if c.Preview() == nil {
		t.Error("expected a preview after concurrent renders")
	}
}

func TestComputeLayout_MatchesRender(t *testing.T) {
	st := NewState()
	st.Source = solidSource(t, 1600, 800, gray)
	st.Captions = Captions{Top: "hello"}

	layout, _, err := ComputeLayout(st)
	if err != nil {
		t.Fatalf("ComputeLayout() error = %v", err)
	}
	preview, err := New().Render(st)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if preview.Layout.Width != layout.Width || preview.Layout.Height != layout.Height {
		t.Errorf("render layout %dx%d differs from computed %dx%d",
			preview.Layout.Width, preview.Layout.Height, layout.Width, layout.Height)
	}
	if layout.Width != 800 || layout.Height != 400 {
		t.Errorf("layout = %dx%d, want 800x400", layout.Width, layout.Height)
	}
	if got := layout.Lines(Top); len(got) != 1 || got[0] != "hello" {
		t.Errorf("Lines(Top) = %q", got)
	}
}
