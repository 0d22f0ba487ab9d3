package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.trai.ch/cicd/internal/adapters/watcher"
	"go.trai.ch/zerr"
)

type errorReporter interface {
	OnError(fn func(error))
}

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	Synth SynthOptions
	// Debounce is the quiet period after a change before synthesizing again.
	Debounce time.Duration
}

// Watch synthesizes once, then again after every change to the project or environment
// files, until ctx is canceled. Synthesis failures are logged and do not stop watching.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	root, err := a.configLoader.DiscoverRoot(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var mu sync.Mutex
	resynth := func() {
		mu.Lock()
		defer mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if _, err := a.Synth(ctx, opts.Synth); err != nil {
			a.logger.Error(err)
		}
	}

	if r, ok := a.watcher.(errorReporter); ok {
		r.OnError(func(err error) {
			a.logger.Warn(fmt.Sprintf("watch error: %v", err))
		})
	}
	if err := a.watcher.Start(ctx, root); err != nil {
		return err
	}
	defer func() {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to stop watcher: %v", err))
		}
	}()

	resynth()

	window := opts.Debounce
	if window <= 0 {
		window = watcher.DefaultDebounceWindow
	}
	debouncer := watcher.NewDebouncer(window, func(paths []string) {
		for _, p := range paths {
			a.logger.Debug("changed: " + p)
		}
		a.logger.Info(fmt.Sprintf("%d configuration file(s) changed", len(paths)))
		resynth()
	})
	defer debouncer.Stop()

	a.logger.Info(fmt.Sprintf("watching %s for changes", root))
	for event := range a.watcher.Events() {
		if ctx.Err() != nil {
			break
		}
		debouncer.Add(event.Path)
	}
	return nil
}
