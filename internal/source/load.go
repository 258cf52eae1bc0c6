package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
)

// State is the lifecycle position of one load attempt.
type State int

// Load attempt states. A load starts pending and settles exactly once.
const (
	StatePending State = iota
	StateResolved
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Opener produces a decoded image. Open and a closure over Decode both fit.
type Opener func(ctx context.Context) (*Image, error)

// FileOpener returns an Opener that decodes the file at path.
func FileOpener(path string) Opener {
	return NamedFileOpener(filepath.Base(path), path)
}

// NamedFileOpener is FileOpener for an image that should carry name, such as
// a gallery template, rather than its file name.
func NamedFileOpener(name, path string) Opener {
	return func(ctx context.Context) (*Image, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return openAs(name, path)
	}
}

// Load is a single attempt to obtain a source image.
//
// Loads are never cancelled by newer loads; whoever consumes the results
// decides what a late completion means.
type Load struct {
	Seq  uint64
	Name string

	done chan struct{}

	mu    sync.Mutex
	state State
	img   *Image
	err   error
}

// NewLoad creates a pending load attempt.
func NewLoad(seq uint64, name string) *Load {
	return &Load{Seq: seq, Name: name, done: make(chan struct{})}
}

// Start runs open on its own goroutine and settles the returned load with the
// result. onSettle, if non-nil, is called after the load settles.
func Start(ctx context.Context, seq uint64, name string, open Opener, onSettle func(*Load)) *Load {
	load := NewLoad(seq, name)
	go func() {
		img, err := open(ctx)
		load.settle(img, err)
		if onSettle != nil {
			onSettle(load)
		}
	}()
	return load
}

// settle moves the load out of pending. Only the first call has any effect.
func (l *Load) settle(img *Image, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StatePending {
		return
	}
	if err != nil {
		l.state = StateFailed
		l.err = err
	} else {
		l.state = StateResolved
		l.img = img
	}
	close(l.done)
}

// Resolve settles the load successfully.
func (l *Load) Resolve(img *Image) { l.settle(img, nil) }

// Fail settles the load with an error.
func (l *Load) Fail(err error) { l.settle(nil, err) }

// State returns the current lifecycle state.
func (l *Load) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Result returns the decoded image or the failure. Both are nil while the
// load is pending.
func (l *Load) Result() (*Image, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.img, l.err
}

// Done is closed once the load settles.
func (l *Load) Done() <-chan struct{} { return l.done }

// Wait blocks until the load settles or ctx ends.
func (l *Load) Wait(ctx context.Context) (*Image, error) {
	select {
	case <-l.done:
		return l.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
