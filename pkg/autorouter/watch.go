package autorouter

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/elysium/pkg/els"
	"github.com/dmitrymomot/elysium/pkg/logger"
)

// Reload recompiles a registered template file in place. A template that
// no longer compiles renders its error inline until it is fixed. Files
// that were not registered are reported with ok set to false; new routes
// need a restart.
func (t *Table) Reload(file string) (ok bool, err error) {
	t.mu.RLock()
	ref, found := t.templates[file]
	t.mu.RUnlock()
	if !found {
		return false, nil
	}

	src, err := os.ReadFile(t.path(file))
	if err != nil {
		return true, fmt.Errorf("autorouter: reload %s: %w", file, err)
	}
	tpl := els.CompileOrFallback(t.path(file), string(src), els.WithLogger(t.cfg.log))
	ref.tpl.Store(tpl)
	return true, nil
}

// Watch recompiles templates when they change on disk until ctx is done.
// It is meant for development.
func (t *Table) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("autorouter: create watcher: %w", err)
	}
	defer w.Close()

	err = filepath.WalkDir(t.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("autorouter: watch %s: %w", t.root, err)
	}

	log := t.cfg.log.With(logger.Component("autorouter"))
	log.Info("watching routes for changes", slog.String("root", t.root))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			t.handleEvent(w, log, event)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", logger.Error(err))
		}
	}
}

func (t *Table) handleEvent(w *fsnotify.Watcher, log *slog.Logger, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if err := w.Add(event.Name); err != nil {
			log.Error("cannot watch new directory", slog.String("dir", event.Name), logger.Error(err))
		}
		return
	}

	rel, err := filepath.Rel(t.root, event.Name)
	if err != nil {
		return
	}
	file := filepath.ToSlash(rel)

	ok, err := t.Reload(file)
	switch {
	case err != nil:
		log.Error("template reload failed", logger.File(file), logger.Error(err))
	case ok:
		log.Info("template reloaded", logger.File(file))
	case event.Has(fsnotify.Create):
		log.Info("new route file detected, restart to register it", logger.File(file))
	}
}
