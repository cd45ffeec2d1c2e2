package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/felixgeelhaar/goalgenie/pkg/storage"
)

// ChangeEvent is a debounced change to a workspace file. GoalID is set when
// the file belongs to a single goal.
type ChangeEvent struct {
	Path       string `json:"path"`
	ChangeType string `json:"change_type"` // "create", "write", "remove", "rename"
	GoalID     string `json:"goal_id,omitempty"`
}

// Watcher reports changes made to the workspace directory, including those
// made by other goalgenie processes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	filter   *PatternFilter
	debounce time.Duration
	onChange func(ChangeEvent)
	logger   *slog.Logger
}

// NewWatcher watches dir. A zero debounce defaults to 200ms.
func NewWatcher(dir string, debounce time.Duration, onChange func(ChangeEvent), logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		watcher:  w,
		filter:   WorkspaceFilter(),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// Run delivers events until ctx is cancelled. Bursts of events for the same
// file collapse into one notification.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close() //nolint:errcheck // best-effort cleanup

	debouncers := make(map[string]*Debouncer[ChangeEvent])
	defer func() {
		for _, d := range debouncers {
			d.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			changeType := opToChangeType(event.Op)
			if changeType == "" || !w.filter.Matches(event.Name) {
				continue
			}

			change := ChangeEvent{Path: event.Name, ChangeType: changeType}
			change.GoalID, _ = storage.GoalIDFromFile(event.Name)

			d, ok := debouncers[event.Name]
			if !ok {
				d = NewDebouncer(w.debounce, w.deliver)
				debouncers[event.Name] = d
			}
			d.Trigger(change)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *Watcher) deliver(e ChangeEvent) {
	w.logger.Debug("workspace changed", "path", e.Path, "change", e.ChangeType, "goal_id", e.GoalID)
	if w.onChange != nil {
		w.onChange(e)
	}
}

func opToChangeType(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
