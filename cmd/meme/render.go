package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/meme/internal/compose"
	"github.com/gorewood/meme/internal/gallery"
	"github.com/gorewood/meme/internal/output"
	"github.com/gorewood/meme/internal/source"
)

// colorFlags are the four caption color overrides shared by commands.
type colorFlags struct {
	topFill, topStroke, bottomFill, bottomStroke string
}

func (f *colorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.topFill, "top-fill", "", "Top text color (#RRGGBB)")
	cmd.Flags().StringVar(&f.topStroke, "top-stroke", "", "Top outline color (#RRGGBB)")
	cmd.Flags().StringVar(&f.bottomFill, "bottom-fill", "", "Bottom text color (#RRGGBB)")
	cmd.Flags().StringVar(&f.bottomStroke, "bottom-stroke", "", "Bottom outline color (#RRGGBB)")
}

// apply returns base with every set flag applied.
func (f *colorFlags) apply(base compose.Style) (compose.Style, error) {
	overrides := []struct {
		flag  string
		value string
		slot  compose.Slot
		part  compose.Part
	}{
		{"--top-fill", f.topFill, compose.Top, compose.Fill},
		{"--top-stroke", f.topStroke, compose.Top, compose.Stroke},
		{"--bottom-fill", f.bottomFill, compose.Bottom, compose.Fill},
		{"--bottom-stroke", f.bottomStroke, compose.Bottom, compose.Stroke},
	}
	style := base
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		c, err := compose.ParseRGB(o.value)
		if err != nil {
			return style, output.UserErrorf(err, "%s: %v", o.flag, err)
		}
		style = style.Set(o.slot, o.part, c)
	}
	return style, nil
}

// renderFlags holds the flags of the render command.
type renderFlags struct {
	image    string
	template int
	top      string
	bottom   string
	out      string
	colors   colorFlags
}

// newRenderCmd creates the render command.
func newRenderCmd() *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Caption an image and write it as PNG",
		Long: `Caption an image file or a preset template and write the result as PNG.

The canvas keeps the image's aspect ratio and is at most 800 pixels wide.
Captions wrap to fit, top text hangs from the top edge and bottom text sits
on the bottom edge. Empty captions are not drawn.

Examples:
  meme render --image cat.jpg --top "I CAN HAS" --bottom "CHEEZBURGER"
  meme render --template 2 --bottom "ship it" -o out/
  meme render --image dog.png --top "wow" --top-fill "#FFCC00" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.image, "image", "i", "", "Base image file")
	cmd.Flags().IntVarP(&flags.template, "template", "t", 0, "Preset template index (see 'meme templates')")
	cmd.Flags().StringVar(&flags.top, "top", "", "Top caption")
	cmd.Flags().StringVar(&flags.bottom, "bottom", "", "Bottom caption")
	cmd.Flags().StringVarP(&flags.out, "out", "o", compose.DefaultExportName, "Output file or directory")
	flags.colors.register(cmd)
	cmd.MarkFlagsMutuallyExclusive("image", "template")
	return cmd
}

// runRender executes the render command.
func runRender(cmd *cobra.Command, flags renderFlags) error {
	printer := newPrinter(cmd)

	st, err := buildRenderState(cmd, flags)
	if err != nil {
		printer.Error(err)
		return err
	}

	comp := compose.New()
	preview, err := comp.Render(st)
	if err != nil {
		err = classify(err)
		printer.Error(err)
		return err
	}
	path, err := comp.ExportFile(flags.out)
	if err != nil {
		err = output.NewSystemErrorWithCause(fmt.Sprintf("writing %s: %v", flags.out, err), err)
		printer.Error(err)
		return err
	}

	layout := preview.Layout
	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"path":   path,
			"source": st.Source.Name(),
			"width":  layout.Width,
			"height": layout.Height,
			"top":    nonNil(layout.Lines(compose.Top)),
			"bottom": nonNil(layout.Lines(compose.Bottom)),
		})
	}

	printer.Print("Wrote %s %s\n", path, printer.Muted(fmt.Sprintf("(%dx%d from %s)", layout.Width, layout.Height, st.Source.Name())))
	for _, sl := range layout.Slots {
		printer.KeyValue(sl.Name, strings.Join(layout.Lines(sl.Slot), " / "))
	}
	return nil
}

// buildRenderState resolves the source image and style for render.
func buildRenderState(cmd *cobra.Command, flags renderFlags) (compose.State, error) {
	st := compose.NewState()
	st.Captions = compose.Captions{Top: flags.top, Bottom: flags.bottom}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return st, err
	}
	if st.Style, err = flags.colors.apply(cfg.Style); err != nil {
		return st, err
	}

	name, path := filepath.Base(flags.image), flags.image
	if path == "" {
		if flags.template == 0 {
			return st, output.NewUserError("specify --image or --template")
		}
		g := gallery.New(cfg.Templates)
		if err := g.Probe(cmd.Context()); err != nil {
			return st, classify(err)
		}
		tmpl, err := g.Lookup(flags.template)
		if err != nil {
			return st, classify(err)
		}
		name, path = tmpl.Name, tmpl.Path
	}

	load := source.Start(cmd.Context(), 1, name, source.NamedFileOpener(name, path), nil)
	if st.Source, err = load.Wait(cmd.Context()); err != nil {
		return st, classify(err)
	}
	return st, nil
}

// nonNil keeps JSON output as [] rather than null for undrawn captions.
func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
