package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/cnd/cnd"
	"github.com/ardnew/cnd/log"
	"github.com/ardnew/cnd/pkg"
)

// Watch monitors node type definition files and rechecks each one whenever
// it changes.
//
// The parent directory of each file is watched rather than the file itself,
// which keeps the watch alive across editors that save atomically by
// renaming a temporary file over the original.
type Watch struct {
	Debounce time.Duration `default:"100ms" help:"Settle time after a change before rechecking"`

	Source []string `arg:"" help:"Source input file(s) to watch." name:"source"`
}

// Run executes the watch command. It blocks until the context is canceled.
func (w *Watch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	watched, err := watchTargets(w.Source)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return pkg.ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	for dir := range watched.dirs {
		err = watcher.Add(dir)
		if err != nil {
			return pkg.ErrWatch.Wrapf("watch %s: %w", dir, err)
		}
	}

	out := stdoutFrom(ctx)

	// Initial pass so the user sees the current state immediately.
	for _, path := range watched.paths {
		reportCheck(ctx, out, path)
	}

	log.InfoContext(ctx, "watching for changes",
		slog.Int("files", len(watched.paths)))

	// Pending paths accumulate until the debounce timer fires, which
	// coalesces editor write bursts into a single recheck per file.
	pending := make(map[string]struct{})

	timer := time.NewTimer(w.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			path, tracked := watched.match(event.Name)
			if !tracked {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) {
				continue
			}

			pending[path] = struct{}{}

			timer.Reset(w.Debounce)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.ErrorContext(ctx, "watch error",
				slog.String("error", watchErr.Error()))

		case <-timer.C:
			for path := range pending {
				reportCheck(ctx, out, path)
			}

			clear(pending)
		}
	}
}

// watchSet maps watched directories to the absolute source paths they
// contain.
type watchSet struct {
	paths []string
	dirs  map[string]struct{}
	byABS map[string]string
}

// watchTargets resolves the given sources to absolute paths and collects
// their parent directories.
func watchTargets(sources []string) (*watchSet, error) {
	set := &watchSet{
		dirs:  make(map[string]struct{}),
		byABS: make(map[string]string),
	}

	for _, source := range sources {
		if source == stdinSource {
			return nil, pkg.ErrWatch.Wrapf("cannot watch stdin")
		}

		abs, err := filepath.Abs(source)
		if err != nil {
			return nil, pkg.ErrWatch.Wrapf("resolve %s: %w", source, err)
		}

		if _, dup := set.byABS[abs]; dup {
			continue
		}

		set.paths = append(set.paths, abs)
		set.byABS[abs] = abs
		set.dirs[filepath.Dir(abs)] = struct{}{}
	}

	return set, nil
}

// match reports whether the event path refers to a watched source.
func (s *watchSet) match(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}

	path, ok := s.byABS[abs]

	return path, ok
}

// reportCheck parses the file at path and writes a one-line status.
func reportCheck(ctx context.Context, w io.Writer, path string) {
	stamp := time.Now().Format(time.TimeOnly)

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "[%s] %s: %v\n", stamp, path, err)

		return
	}

	result, err := cnd.ParseStringCached(ctx, string(source), cnd.WithSystemID(path))
	if err != nil {
		fmt.Fprintf(w, "[%s] %s:\n%v\n", stamp, path, err)

		return
	}

	fmt.Fprintf(w, "[%s] %s: ok (%d node types)\n",
		stamp, path, len(result.NodeTypes))
}
