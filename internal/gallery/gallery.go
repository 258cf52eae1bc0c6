// Package gallery holds the preset template images offered next to uploads.
//
// Entries start out visible. Probe decodes every entry once; an entry whose
// image cannot be loaded is hidden from the gallery and the rest carry on.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorewood/meme/internal/logging"
	"github.com/gorewood/meme/internal/source"
)

// ErrNoSuchTemplate is returned by Lookup for an index with no visible entry.
var ErrNoSuchTemplate = errors.New("no such template")

// Entry is one preset as configured.
type Entry struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
}

// Defaults returns the stock presets.
func Defaults() []Entry {
	return []Entry{
		{Name: "Group picture", Path: filepath.Join("assets", "Group picture 1.jpeg")},
		{Name: "Screenshot", Path: filepath.Join("assets", "Screenshot (25).png")},
	}
}

// Status is the probe outcome of a template.
type Status int

// Template statuses.
const (
	Unprobed Status = iota
	Ready
	Hidden
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Hidden:
		return "hidden"
	default:
		return "unprobed"
	}
}

// Template is an entry together with what probing found out about it.
type Template struct {
	Entry
	Status Status `json:"-"`
	Reason string `json:"reason,omitempty"` // why a hidden template failed
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Visible reports whether the template is shown in the gallery.
func (t Template) Visible() bool { return t.Status != Hidden }

// Gallery is an ordered set of templates. It is safe for concurrent use.
type Gallery struct {
	mu        sync.Mutex
	templates []Template
}

// New builds a gallery from entries. Entries without a name are named
// after their file.
func New(entries []Entry) *Gallery {
	g := &Gallery{templates: make([]Template, len(entries))}
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			base := filepath.Base(e.Path)
			e.Name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		g.templates[i] = Template{Entry: e}
	}
	return g
}

// Probe loads every template concurrently and records whether it decoded.
// Failures hide only the entry that failed. Probe returns ctx.Err() if the
// context ends first; entries not yet settled stay unprobed.
func (g *Gallery) Probe(ctx context.Context) error {
	g.mu.Lock()
	entries := make([]Entry, len(g.templates))
	for i, t := range g.templates {
		entries[i] = t.Entry
	}
	g.mu.Unlock()

	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			load := source.Start(ctx, uint64(i), e.Name, source.NamedFileOpener(e.Name, e.Path), nil)
			img, err := load.Wait(ctx)
			if err != nil && ctx.Err() != nil {
				return
			}
			g.settle(i, img, err)
		}()
	}
	wg.Wait()
	return ctx.Err()
}

func (g *Gallery) settle(i int, img *source.Image, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := &g.templates[i]
	if err != nil {
		t.Status = Hidden
		t.Reason = err.Error()
		t.Width, t.Height = 0, 0
		logging.Logger().Debug("template hidden", "name", t.Name, "path", t.Path, "error", err)
		return
	}
	t.Status = Ready
	t.Reason = ""
	t.Width, t.Height = img.Width(), img.Height()
	logging.Logger().Debug("template ready", "name", t.Name, "width", t.Width, "height", t.Height)
}

// All returns every template, hidden ones included, in configured order.
func (g *Gallery) All() []Template {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Template, len(g.templates))
	copy(out, g.templates)
	return out
}

// Visible returns the templates shown in the gallery. Display indexes are
// 1-based positions in this list.
func (g *Gallery) Visible() []Template {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Template
	for _, t := range g.templates {
		if t.Visible() {
			out = append(out, t)
		}
	}
	return out
}

// Lookup returns the visible template at the 1-based display index.
func (g *Gallery) Lookup(index int) (Template, error) {
	visible := g.Visible()
	if index < 1 || index > len(visible) {
		return Template{}, fmt.Errorf("%w: %d (have %d)", ErrNoSuchTemplate, index, len(visible))
	}
	return visible[index-1], nil
}
