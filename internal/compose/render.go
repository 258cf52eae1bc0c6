package compose

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"

	"github.com/gorewood/meme/internal/logging"
)

// Preview is one rendered frame together with the layout that produced it.
type Preview struct {
	Image  *image.RGBA
	Layout *Layout
}

// Compositor renders states and keeps the most recent preview for export.
// It is safe for concurrent use; renders themselves are independent.
type Compositor struct {
	mu      sync.Mutex
	preview *Preview
}

// New returns a compositor with no preview.
func New() *Compositor {
	return &Compositor{}
}

// Render draws st and makes the result the current preview.
// It returns ErrNoSource when st has no source image.
func (c *Compositor) Render(st State) (*Preview, error) {
	preview, err := Draw(st)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.preview = preview
	c.mu.Unlock()
	return preview, nil
}

// Preview returns the last rendered frame, or nil before the first render.
func (c *Compositor) Preview() *Preview {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}

// Draw renders st into a new image without touching any compositor.
func Draw(st State) (*Preview, error) {
	layout, face, err := ComputeLayout(st)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(layout.Width, layout.Height)
	defer dc.Close() //nolint:errcheck // software context, nothing to flush

	dc.Clear()
	dc.DrawImageEx(gg.ImageBufFromImage(st.Source.Bitmap()), gg.DrawImageOptions{
		DstWidth:      float64(layout.Width),
		DstHeight:     float64(layout.Height),
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})

	for _, slot := range layout.Slots {
		if err := drawSlot(dc, face, layout, slot); err != nil {
			return nil, fmt.Errorf("drawing %s caption: %w", slot.Name, err)
		}
	}

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("unexpected surface type %T", dc.Image())
	}
	logging.Logger().Debug("rendered preview",
		"source", st.Source.Name(),
		"width", layout.Width,
		"height", layout.Height,
		"slots", len(layout.Slots))
	return &Preview{Image: img, Layout: layout}, nil
}

// drawSlot strokes then fills every line of one caption on the same glyph
// path, so the outline reads as a border under the fill.
func drawSlot(dc *gg.Context, face *Face, layout *Layout, slot SlotLayout) error {
	dc.SetLineWidth(layout.StrokeWidth)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.SetMiterLimit(MiterLimit)
	dc.SetFillRule(gg.FillRuleNonZero)

	for _, line := range slot.Lines {
		dc.ClearPath()
		if err := face.Outline(dc, line.Text, line.X, line.Baseline); err != nil {
			return err
		}
		dc.SetColor(slot.Style.Stroke.Color())
		if err := dc.StrokePreserve(); err != nil {
			return fmt.Errorf("stroking %q: %w", line.Text, err)
		}
		dc.SetColor(slot.Style.Fill.Color())
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("filling %q: %w", line.Text, err)
		}
	}
	return nil
}
