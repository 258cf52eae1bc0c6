package compose

import (
	"errors"
	"fmt"
	"math"
)

// Canvas constants, in pixels.
const (
	MaxCanvasWidth = 800
	Padding        = 20
	MinFontSize    = 24
	MinStrokeWidth = 2
	MiterLimit     = 2
)

// ErrNoSource is returned when rendering without a source image.
var ErrNoSource = errors.New("no source image set")

// CanvasSize returns the drawing surface size for a source of srcW x srcH:
// the width is capped at MaxCanvasWidth and the height follows the aspect
// ratio, truncated to whole pixels.
func CanvasSize(srcW, srcH int) (width, height int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	width = min(srcW, MaxCanvasWidth)
	height = int(int64(srcH) * int64(width) / int64(srcW))
	return width, max(height, 1)
}

// FontSize returns the caption font size for a canvas width.
func FontSize(canvasWidth int) float64 {
	return math.Max(float64(canvasWidth)/15, MinFontSize)
}

// StrokeWidth returns the outline width for a canvas width.
func StrokeWidth(canvasWidth int) float64 {
	return math.Max(float64(canvasWidth)/200, MinStrokeWidth)
}

// Line is one wrapped caption line, positioned on the canvas.
type Line struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`        // left edge of the pen, centers the line
	Baseline float64 `json:"baseline"` // y of the glyph baseline
	Width    float64 `json:"width"`
}

// SlotLayout is the placed text of one caption slot.
type SlotLayout struct {
	Slot  Slot      `json:"-"`
	Name  string    `json:"slot"`
	Style SlotStyle `json:"style"`
	Lines []Line    `json:"lines"`
}

// Layout is everything about a render that can be computed without pixels.
type Layout struct {
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	FontSize    float64      `json:"font_size"`
	StrokeWidth float64      `json:"stroke_width"`
	LineHeight  float64      `json:"line_height"`
	MaxLine     float64      `json:"max_line_width"`
	Slots       []SlotLayout `json:"slots"`
}

// Slot returns the layout for slot, or nil when that caption is not drawn.
func (l *Layout) Slot(slot Slot) *SlotLayout {
	for i := range l.Slots {
		if l.Slots[i].Slot == slot {
			return &l.Slots[i]
		}
	}
	return nil
}

// Lines returns the wrapped text of slot.
func (l *Layout) Lines(slot Slot) []string {
	sl := l.Slot(slot)
	if sl == nil {
		return nil
	}
	out := make([]string, len(sl.Lines))
	for i, line := range sl.Lines {
		out[i] = line.Text
	}
	return out
}

// ComputeLayout sizes the canvas for st and places both captions.
func ComputeLayout(st State) (*Layout, *Face, error) {
	if !st.HasSource() {
		return nil, nil, ErrNoSource
	}
	width, height := CanvasSize(st.Source.Width(), st.Source.Height())
	return layoutFor(width, height, st.Captions, st.Style)
}

func layoutFor(width, height int, captions Captions, style Style) (*Layout, *Face, error) {
	face, err := NewFace(FontSize(width))
	if err != nil {
		return nil, nil, fmt.Errorf("loading caption face: %w", err)
	}

	layout := &Layout{
		Width:       width,
		Height:      height,
		FontSize:    face.Size(),
		StrokeWidth: StrokeWidth(width),
		LineHeight:  face.LineHeight(),
		MaxLine:     float64(width - 2*Padding),
	}

	for _, slot := range Slots {
		text := captions.Text(slot)
		if text == "" {
			continue
		}
		wrapped := Wrap(text, layout.MaxLine, face.Measure)
		layout.Slots = append(layout.Slots, SlotLayout{
			Slot:  slot,
			Name:  slot.String(),
			Style: style.Slot(slot),
			Lines: placeLines(wrapped, slot, layout, face),
		})
	}
	return layout, face, nil
}

// placeLines stacks lines around the slot anchor. The top slot hangs from
// the em-box top of each line, the bottom slot stands on the em-box bottom;
// the block is centered on the anchor with line i at anchor-(n-1)*lh/2+i*lh.
func placeLines(lines []string, slot Slot, layout *Layout, face *Face) []Line {
	n := float64(len(lines))
	anchor := float64(Padding)
	if slot == Bottom {
		anchor = float64(layout.Height - Padding)
	}
	start := anchor - (n-1)*layout.LineHeight/2
	center := float64(layout.Width) / 2

	placed := make([]Line, len(lines))
	for i, text := range lines {
		y := start + float64(i)*layout.LineHeight
		baseline := y + face.Ascent()
		if slot == Bottom {
			baseline = y - face.Descent()
		}
		w := face.Measure(text)
		placed[i] = Line{
			Text:     text,
			X:        center - w/2,
			Baseline: baseline,
			Width:    w,
		}
	}
	return placed
}

// WrapForWidth wraps a caption as it would be laid out on a canvas derived
// from a source of the given width.
func WrapForWidth(text string, sourceWidth int) ([]string, error) {
	width, _ := CanvasSize(sourceWidth, 1)
	if width == 0 {
		return nil, fmt.Errorf("source width must be positive, got %d", sourceWidth)
	}
	face, err := NewFace(FontSize(width))
	if err != nil {
		return nil, err
	}
	return Wrap(text, float64(width-2*Padding), face.Measure), nil
}
