// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package watch reports changes to scripts and headers on disk.
package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/fs"
	"github.com/edmundito/agsscript/internal/script"
)

const DefaultDebounce = 100 * time.Millisecond

type Option func(w *Watcher)

func OptionWithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// OptionWithDebounce sets how long the watcher waits after the last event
// before reporting a batch of changes.
func OptionWithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// Watcher batches file system events for a set of targets. A directory
// target covers every script and header directly inside it. A file target
// is watched through its parent directory so that editors which replace
// files on save are still seen.
type Watcher struct {
	w        *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
	// dirs maps each watched directory to the file names it covers. A nil
	// set covers every script file.
	dirs map[string]map[string]bool
}

func New(paths []string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{}, err)
	}
	w := &Watcher{
		w:        fw,
		debounce: DefaultDebounce,
		dirs:     make(map[string]map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w.logger = w.logger.With(slog.String("component", "watch"))
	for _, p := range paths {
		if err := w.add(p); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(p string) error {
	abs, err := filepath.Abs(p)
	if err != nil {
		return exc.WrapUnknown(exc.Location{URI: p}, err)
	}
	stat, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return exc.Wrap(exc.Location{URI: p}, exc.CodeFileNotFound, err)
		}
		return exc.WrapUnknown(exc.Location{URI: p}, err)
	}
	dir, name := abs, ""
	if !stat.IsDir() {
		dir, name = filepath.Dir(abs), filepath.Base(abs)
	}
	names, watched := w.dirs[dir]
	switch {
	case !watched && name == "":
		w.dirs[dir] = nil
	case !watched:
		w.dirs[dir] = map[string]bool{name: true}
	case names != nil && name == "":
		w.dirs[dir] = nil
	case names != nil:
		names[name] = true
	}
	if watched {
		return nil
	}
	if err := w.w.Add(dir); err != nil {
		return exc.WrapUnknown(exc.Location{URI: dir}, err)
	}
	w.logger.Debug("watching", slog.String("dir", dir))
	return nil
}

func (w *Watcher) covers(path string) bool {
	names, ok := w.dirs[filepath.Dir(path)]
	if !ok {
		return false
	}
	if names == nil {
		return fs.KindOf(path) != script.FileKindNone
	}
	return names[filepath.Base(path)]
}

// Run calls onChange with the sorted set of paths changed since the last
// call, once no event has arrived for the debounce interval. It returns
// when ctx is done, when the watcher is closed, or with the first error
// returned by onChange.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string) error) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.covers(ev.Name) {
				continue
			}
			w.logger.DebugContext(ctx, "changed", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			pending[ev.Name] = true
			timer.Reset(w.debounce)
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "watch error", slog.String("error", err.Error()))
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)
			if err := onChange(ctx, changed); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) Close() error {
	return w.w.Close()
}
