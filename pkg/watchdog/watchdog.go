package watchdog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type WatchDogFactory struct {
	logger *zap.Logger
}

// Filter decides whether a path is forwarded. A nil Filter forwards everything.
type Filter func(path string) bool

type WatchDog struct {
	watchCtx   context.Context
	notifyChan chan<- string
	filter     Filter
	logger     *zap.Logger

	watcher *fsnotify.Watcher
}

func NewWatchDogFactory(logger *zap.Logger) *WatchDogFactory {
	return &WatchDogFactory{
		logger: logger.Named("watchdog"),
	}
}

// New creates a WatchDog forwarding the paths of created or rewritten files
// to notifyChan until watchCtx is done. notifyChan is closed when the
// WatchDog stops.
func (w *WatchDogFactory) New(watchCtx context.Context, notifyChan chan<- string, filter Filter) (*WatchDog, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	watchDog := &WatchDog{
		watchCtx:   watchCtx,
		notifyChan: notifyChan,
		filter:     filter,
		logger:     w.logger,
		watcher:    watcher,
	}

	go watchDog.watch()

	return watchDog, nil
}

// AddDir adds a directory to the watch list
func (w *WatchDog) AddDir(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path of %s: %w", dir, err)
	}
	if _, err := os.Stat(absDir); err != nil {
		return fmt.Errorf("cannot watch %s: %w", absDir, err)
	}
	if err := w.watcher.Add(absDir); err != nil {
		return fmt.Errorf("failed to add %s to watcher: %w", absDir, err)
	}
	w.logger.Debug("Added directory to watch list", zap.String("dir", absDir))
	return nil
}

func (w *WatchDog) watch() {
	defer w.watcher.Close()
	defer close(w.notifyChan)
	for {
		select {
		case <-w.watchCtx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				w.logger.Debug("fsnotify channel closed")
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.logger.Debug("fsnotify error channel closed")
				return
			}
			w.logger.Error("fsnotify error", zap.Error(err))
		}
	}
}

func (w *WatchDog) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if w.filter != nil && !w.filter(event.Name) {
		w.logger.Debug("File ignored by filter", zap.String("file", event.Name))
		return
	}
	select {
	case w.notifyChan <- event.Name:
		w.logger.Debug("File added to notify channel", zap.String("file", event.Name))
	case <-w.watchCtx.Done():
	}
}
