package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/meme/internal/compose"
	"github.com/gorewood/meme/internal/gallery"
	"github.com/gorewood/meme/internal/output"
	"github.com/gorewood/meme/internal/session"
)

const shellHelp = `image PATH              load an image file
template N              load preset template N
templates               list preset templates
top TEXT                set the top caption (empty clears it)
bottom TEXT             set the bottom caption
color SLOT PART #HEX    set a color, e.g. color top stroke #FF0000
show                    print the current captions, colors and canvas
export [PATH]           write the meme as PNG (default meme.png)
help                    show this help
quit                    leave the shell`

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

// newShellCmd creates the shell command.
func newShellCmd() *cobra.Command {
	var strictFlag bool
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Edit a meme interactively, one command per line",
		Long: `Edit a meme interactively. Every line is one edit: load an image, change a
caption or a color, then export. The meme is re-rendered after every change.

Commands are read from stdin, so the shell also runs scripts:

  printf 'image cat.jpg\ntop hello\nexport\n' | meme shell

` + shellHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, strictFlag)
		},
	}
	cmd.Flags().BoolVar(&strictFlag, "strict", false, "Stop at the first failing command, including an image that fails to load, and exit non-zero")
	return cmd
}

// shell dispatches command lines to a running session.
type shell struct {
	sess    *session.Session
	gallery *gallery.Gallery
	printer *output.Printer
	strict  bool
}

// runShell executes the shell command.
func runShell(cmd *cobra.Command, strict bool) error {
	printer := newPrinter(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}
	g := gallery.New(cfg.Templates)
	if err := g.Probe(cmd.Context()); err != nil {
		err = classify(err)
		printer.Error(err)
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess := session.New(compose.New(), session.WithGallery(g), session.WithStyle(cfg.Style))
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sess.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	sh := &shell{sess: sess, gallery: g, printer: printer, strict: strict}
	interactive := printer.IsTTY() && !printer.IsJSON()
	if interactive {
		printer.Box("meme shell", shellHelp)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if interactive {
			printer.Print("meme> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		err := sh.exec(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			err = classify(err)
			printer.Error(err)
			if strict {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return output.NewSystemErrorWithCause("reading commands", err)
	}
	return nil
}

// exec runs one command line.
func (sh *shell) exec(ctx context.Context, line string) error {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "image":
		if rest == "" {
			return output.NewUserError("usage: image PATH")
		}
		attempt, err := sh.sess.LoadFile(ctx, rest)
		if err != nil {
			return err
		}
		return sh.awaitLoad(ctx, attempt)
	case "template":
		index, err := strconv.Atoi(rest)
		if err != nil {
			return output.NewUserError("usage: template N")
		}
		attempt, err := sh.sess.LoadTemplate(ctx, index)
		if err != nil {
			return err
		}
		return sh.awaitLoad(ctx, attempt)
	case "templates":
		return sh.listTemplates()
	case "top", "bottom":
		slot, _ := compose.ParseSlot(verb)
		if err := sh.sess.SetCaption(ctx, slot, rest); err != nil {
			return err
		}
		return sh.report(map[string]any{"slot": slot.String(), "caption": rest})
	case "color", "colour":
		return sh.setColor(ctx, strings.Fields(rest))
	case "show":
		return sh.show(ctx)
	case "export":
		return sh.export(ctx, rest)
	case "help":
		sh.printer.Println(shellHelp)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return output.NewUserError(fmt.Sprintf("unknown command %q (try help)", verb))
	}
}

// awaitLoad waits until the session has applied a decode. A failed decode
// leaves the previous image in place; it is a warning unless the shell is
// strict.
func (sh *shell) awaitLoad(ctx context.Context, attempt *session.Attempt) error {
	if err := attempt.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return err
		}
		if sh.strict {
			return output.UserErrorf(err, "could not load %s: %v", attempt.Name, err)
		}
		sh.printer.Warn("could not load %s: %v", attempt.Name, err)
		return nil
	}
	snap, err := sh.sess.Snapshot(ctx)
	if err != nil {
		return err
	}
	if sh.printer.IsJSON() {
		return sh.printer.WriteJSON(map[string]any{"loaded": snap.Source, "width": snap.Width, "height": snap.Height})
	}
	sh.printer.Print("Loaded %s %s\n", snap.Source, sh.printer.Muted(fmt.Sprintf("(%dx%d)", snap.Width, snap.Height)))
	return nil
}

func (sh *shell) setColor(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return output.NewUserError("usage: color top|bottom fill|stroke #RRGGBB")
	}
	slot, err := compose.ParseSlot(args[0])
	if err != nil {
		return output.UserErrorf(err, "%v", err)
	}
	part, err := compose.ParsePart(args[1])
	if err != nil {
		return output.UserErrorf(err, "%v", err)
	}
	c, err := compose.ParseRGB(args[2])
	if err != nil {
		return output.UserErrorf(err, "%v", err)
	}
	if err := sh.sess.SetColor(ctx, slot, part, c); err != nil {
		return err
	}
	if sh.printer.IsJSON() {
		return sh.printer.WriteJSON(map[string]any{"slot": slot.String(), "part": part.String(), "color": c.String()})
	}
	sh.printer.Print("%s %s %s\n", slot, part, sh.printer.Swatch(c.String()))
	return nil
}

func (sh *shell) show(ctx context.Context) error {
	snap, err := sh.sess.Snapshot(ctx)
	if err != nil {
		return err
	}
	if sh.printer.IsJSON() {
		return sh.printer.WriteJSON(snap)
	}

	src := "(none)"
	if snap.Source != "" {
		src = fmt.Sprintf("%s, canvas %dx%d", snap.Source, snap.Width, snap.Height)
	}
	sh.printer.KeyValue("image", src)
	if snap.Pending > 0 {
		sh.printer.KeyValue("loading", strconv.Itoa(snap.Pending))
	}
	for _, slot := range compose.Slots {
		style := snap.Style.Slot(slot)
		sh.printer.Section(slot.String())
		caption := snap.Captions.Text(slot)
		if snap.Layout != nil {
			if lines := snap.Layout.Lines(slot); len(lines) > 0 {
				caption = strings.Join(lines, " / ")
			}
		}
		sh.printer.KeyValue("text", caption)
		sh.printer.KeyValue("fill", sh.printer.Swatch(style.Fill.String()))
		sh.printer.KeyValue("stroke", sh.printer.Swatch(style.Stroke.String()))
	}
	return nil
}

func (sh *shell) export(ctx context.Context, path string) error {
	written, err := sh.sess.Export(ctx, path)
	if err != nil {
		return output.NewSystemErrorWithCause(fmt.Sprintf("export failed: %v", err), err)
	}
	if sh.printer.IsJSON() {
		return sh.printer.WriteJSON(map[string]any{"exported": written != "", "path": written})
	}
	if written == "" {
		sh.printer.Println(sh.printer.Muted("Nothing to export yet: load an image first."))
		return nil
	}
	return sh.printer.Success(map[string]any{"message": "Wrote " + written})
}

func (sh *shell) listTemplates() error {
	rows := templateRows(sh.gallery, false)
	if sh.printer.IsJSON() {
		return sh.printer.WriteJSON(map[string]any{"templates": rows})
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{strconv.Itoa(r.Index), r.Name, fmt.Sprintf("%dx%d", r.Width, r.Height)})
	}
	sh.printer.Table([]string{"#", "NAME", "SIZE"}, table)
	return nil
}

// report acknowledges an edit. Human mode stays quiet.
func (sh *shell) report(data map[string]any) error {
	if sh.printer.IsJSON() {
		return sh.printer.WriteJSON(data)
	}
	return nil
}
