package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorewood/meme/internal/compose"
	"github.com/gorewood/meme/internal/source"
)

// applyColors overrides the colors of base that are set in in.
func applyColors(base compose.Style, in RenderInput) (compose.Style, error) {
	overrides := []struct {
		name  string
		value string
		slot  compose.Slot
		part  compose.Part
	}{
		{"top_fill", in.TopFill, compose.Top, compose.Fill},
		{"top_stroke", in.TopStroke, compose.Top, compose.Stroke},
		{"bottom_fill", in.BottomFill, compose.Bottom, compose.Fill},
		{"bottom_stroke", in.BottomStroke, compose.Bottom, compose.Stroke},
	}
	style := base
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		c, err := compose.ParseRGB(o.value)
		if err != nil {
			return style, fmt.Errorf("%s: %w", o.name, err)
		}
		style = style.Set(o.slot, o.part, c)
	}
	return style, nil
}

// loadSource decodes one image and waits for it.
func loadSource(ctx context.Context, name, path string) (*source.Image, error) {
	load := source.Start(ctx, 1, name, source.NamedFileOpener(name, path), nil)
	img, err := load.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return img, nil
}

// slotOutputs converts a layout into tool output.
func slotOutputs(layout *compose.Layout) []SlotOutput {
	out := make([]SlotOutput, 0, len(layout.Slots))
	for _, sl := range layout.Slots {
		out = append(out, SlotOutput{
			Slot:   sl.Name,
			Lines:  layout.Lines(sl.Slot),
			Fill:   sl.Style.Fill.String(),
			Stroke: sl.Style.Stroke.String(),
		})
	}
	return out
}

var errNoImage = errors.New("specify image or template")
