package compose

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// pathSink receives glyph outlines. *gg.Context satisfies it.
type pathSink interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
}

var captionFont = sync.OnceValues(func() (*sfnt.Font, error) {
	f, err := sfnt.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing caption font: %w", err)
	}
	return f, nil
})

// Face is the caption font at one pixel size. Measuring and drawing go
// through the same advance and kerning data so a line never draws wider than
// it measured. A Face is not safe for concurrent use.
type Face struct {
	font *sfnt.Font
	size float64
	ppem fixed.Int26_6
	buf  sfnt.Buffer

	ascent  float64
	descent float64
}

// NewFace returns the bold caption face at size pixels.
func NewFace(size float64) (*Face, error) {
	f, err := captionFont()
	if err != nil {
		return nil, err
	}
	face := &Face{
		font: f,
		size: size,
		ppem: fixed.Int26_6(size * 64),
	}
	metrics, err := f.Metrics(&face.buf, face.ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("reading font metrics: %w", err)
	}
	face.ascent = fromFixed(metrics.Ascent)
	face.descent = fromFixed(metrics.Descent)
	return face, nil
}

// Size returns the pixel size the face was built for.
func (f *Face) Size() float64 { return f.size }

// Ascent returns the distance from the em-box top to the baseline.
func (f *Face) Ascent() float64 { return f.ascent }

// Descent returns the distance from the baseline to the em-box bottom.
func (f *Face) Descent() float64 { return f.descent }

// Measure returns the advance width of s in pixels.
func (f *Face) Measure(s string) float64 {
	var end fixed.Int26_6
	_ = f.walk(s, func(_ sfnt.GlyphIndex, pen fixed.Int26_6, advance fixed.Int26_6) error {
		end = pen + advance
		return nil
	})
	return fromFixed(end)
}

// LineHeight is 1.2 times the width of "M": a stand-in for typographic line
// height, used in place of real font metrics.
func (f *Face) LineHeight() float64 {
	return 1.2 * f.Measure("M")
}

// Outline appends the glyph contours of s to sink, with the pen starting at
// x on the given baseline.
func (f *Face) Outline(sink pathSink, s string, x, baseline float64) error {
	return f.walk(s, func(gid sfnt.GlyphIndex, pen fixed.Int26_6, _ fixed.Int26_6) error {
		segments, err := f.font.LoadGlyph(&f.buf, gid, f.ppem, nil)
		if err != nil {
			return fmt.Errorf("loading glyph %d: %w", gid, err)
		}
		ox := x + fromFixed(pen)
		pt := func(p fixed.Point26_6) (float64, float64) {
			return ox + fromFixed(p.X), baseline + fromFixed(p.Y)
		}

		open := false
		for _, seg := range segments {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if open {
					sink.ClosePath()
				}
				sink.MoveTo(pt(seg.Args[0]))
				open = true
			case sfnt.SegmentOpLineTo:
				sink.LineTo(pt(seg.Args[0]))
			case sfnt.SegmentOpQuadTo:
				cx, cy := pt(seg.Args[0])
				px, py := pt(seg.Args[1])
				sink.QuadraticTo(cx, cy, px, py)
			case sfnt.SegmentOpCubeTo:
				c1x, c1y := pt(seg.Args[0])
				c2x, c2y := pt(seg.Args[1])
				px, py := pt(seg.Args[2])
				sink.CubicTo(c1x, c1y, c2x, c2y, px, py)
			}
		}
		if open {
			sink.ClosePath()
		}
		return nil
	})
}

// walk visits every glyph of s with its pen position and advance.
// Unknown runes map to glyph 0; a missing kerning pair counts as zero.
func (f *Face) walk(s string, visit func(gid sfnt.GlyphIndex, pen, advance fixed.Int26_6) error) error {
	var (
		pen     fixed.Int26_6
		prev    sfnt.GlyphIndex
		hasPrev bool
	)
	for _, r := range s {
		gid, err := f.font.GlyphIndex(&f.buf, r)
		if err != nil {
			gid = 0
		}
		if hasPrev {
			if kern, err := f.font.Kern(&f.buf, prev, gid, f.ppem, font.HintingNone); err == nil {
				pen += kern
			}
		}
		advance, err := f.font.GlyphAdvance(&f.buf, gid, f.ppem, font.HintingNone)
		if err != nil {
			advance = 0
		}
		if err := visit(gid, pen, advance); err != nil {
			return err
		}
		pen += advance
		prev, hasPrev = gid, true
	}
	return nil
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
