package compose

import (
	"fmt"
	"strings"

	"github.com/gorewood/meme/internal/source"
)

// Slot identifies one of the two caption regions.
type Slot int

// Caption slots, in drawing order.
const (
	Top Slot = iota
	Bottom
)

// Slots lists every slot in drawing order.
var Slots = [...]Slot{Top, Bottom}

// String returns "top" or "bottom".
func (s Slot) String() string {
	switch s {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// ParseSlot accepts "top" or "bottom" in any case.
func ParseSlot(s string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return Top, nil
	case "bottom":
		return Bottom, nil
	default:
		return 0, fmt.Errorf("unknown caption slot %q (want top or bottom)", s)
	}
}

// Part selects the fill or the stroke color of a slot.
type Part int

// Color parts of a slot.
const (
	Fill Part = iota
	Stroke
)

// String returns "fill" or "stroke".
func (p Part) String() string {
	if p == Stroke {
		return "stroke"
	}
	return "fill"
}

// ParsePart accepts "fill" or "stroke" in any case.
func ParsePart(s string) (Part, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fill", "text":
		return Fill, nil
	case "stroke", "outline":
		return Stroke, nil
	default:
		return 0, fmt.Errorf("unknown color part %q (want fill or stroke)", s)
	}
}

// SlotStyle is the pair of colors used for one caption slot.
type SlotStyle struct {
	Fill   RGB `json:"fill"   yaml:"fill"`
	Stroke RGB `json:"stroke" yaml:"stroke"`
}

// Style holds the colors of both slots.
type Style struct {
	Top    SlotStyle `json:"top"`
	Bottom SlotStyle `json:"bottom"`
}

// DefaultStyle returns white fill with black stroke for both slots.
func DefaultStyle() Style {
	slot := SlotStyle{Fill: White, Stroke: Black}
	return Style{Top: slot, Bottom: slot}
}

// Slot returns the colors for s.
func (s Style) Slot(slot Slot) SlotStyle {
	if slot == Bottom {
		return s.Bottom
	}
	return s.Top
}

// Set replaces one color and returns the updated style.
func (s Style) Set(slot Slot, part Part, c RGB) Style {
	target := &s.Top
	if slot == Bottom {
		target = &s.Bottom
	}
	if part == Stroke {
		target.Stroke = c
	} else {
		target.Fill = c
	}
	return s
}

// Captions holds the raw caption text of both slots.
type Captions struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
}

// Text returns the trimmed caption for slot. An empty result means the slot
// is not drawn.
func (c Captions) Text(slot Slot) string {
	if slot == Bottom {
		return strings.TrimSpace(c.Bottom)
	}
	return strings.TrimSpace(c.Top)
}

// Set replaces one caption and returns the updated captions.
func (c Captions) Set(slot Slot, text string) Captions {
	if slot == Bottom {
		c.Bottom = text
	} else {
		c.Top = text
	}
	return c
}

// State is everything a render reads. It is a plain value; callers own it.
type State struct {
	Source   *source.Image
	Captions Captions
	Style    Style
}

// NewState returns a state with no source, empty captions and default colors.
func NewState() State {
	return State{Style: DefaultStyle()}
}

// HasSource reports whether a source image has been set.
func (s State) HasSource() bool {
	return s.Source != nil
}
