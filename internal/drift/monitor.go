package drift

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent describes one tracked entry whose status changed between
// two scans. Old is empty when the entry was first observed, New is
// empty when its document dropped it.
type ChangeEvent struct {
	Doc  string `json:"doc"`
	Spec string `json:"spec"`
	Old  Status `json:"old,omitempty"`
	New  Status `json:"new,omitempty"`
}

// EventCallback receives status transitions from a running Monitor,
// along with the summary of the scan that produced them.
type EventCallback func(ChangeEvent, Summary)

// Monitor watches a directory tree and re-scans the target whenever
// files change, reporting entries whose status moved. Filesystem events
// are debounced so an editor save burst triggers one scan.
type Monitor struct {
	eng      *Engine
	target   string
	root     string
	log      *slog.Logger
	debounce time.Duration
	baseline map[entryKey]Status
}

type entryKey struct {
	doc  string
	spec string
}

// NewMonitor builds a Monitor scanning target and watching root, which
// must contain every file the target's documents track.
func NewMonitor(eng *Engine, target, root string, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		eng:      eng,
		target:   target,
		root:     root,
		log:      log,
		debounce: 200 * time.Millisecond,
	}
}

// Run scans once to establish a baseline, then processes filesystem
// events until ctx is cancelled, calling cb for every status change.
// Directories created at runtime are added to the watch list; hidden
// directories are never watched.
func (m *Monitor) Run(ctx context.Context, cb EventCallback) error {
	res, err := m.eng.Scan(ctx, m.target)
	if err != nil {
		return err
	}
	m.baseline = snapshot(res)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, m.root); err != nil {
		return err
	}

	m.log.Info("monitor: started",
		slog.String("root", m.root),
		slog.Int("entries", len(m.baseline)))

	// rescanTimer debounces bursts of filesystem events.
	var rescanTimer *time.Timer
	var rescanCh <-chan time.Time

	scheduleRescan := func() {
		if rescanTimer == nil {
			rescanTimer = time.NewTimer(m.debounce)
			rescanCh = rescanTimer.C
		} else {
			rescanTimer.Reset(m.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rescanTimer != nil {
				rescanTimer.Stop()
			}
			m.log.Info("monitor: stopped")
			return nil

		case <-rescanCh:
			m.rescan(ctx, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						m.log.Warn("monitor: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
				}
			}
			scheduleRescan()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.log.Error("monitor: error", slog.String("error", watchErr.Error()))
		}
	}
}

// rescan runs a fresh scan and emits the difference against the
// baseline. A failed scan keeps the old baseline so a transient error
// never manufactures phantom transitions.
func (m *Monitor) rescan(ctx context.Context, cb EventCallback) {
	res, err := m.eng.Scan(ctx, m.target)
	if err != nil {
		m.log.Warn("monitor: rescan failed", slog.String("error", err.Error()))
		return
	}
	cur := snapshot(res)
	events := diffEvents(m.baseline, cur, res)
	m.baseline = cur
	sum := res.Summary()

	for _, ev := range events {
		m.log.Info("monitor: status changed",
			slog.String("doc", ev.Doc),
			slog.String("spec", ev.Spec),
			slog.String("old", string(ev.Old)),
			slog.String("new", string(ev.New)))
		if cb != nil {
			cb(ev, sum)
		}
	}
}

// snapshot flattens a result into entry statuses, skipping broken docs.
func snapshot(res *Result) map[entryKey]Status {
	out := make(map[entryKey]Status)
	for _, d := range res.Docs {
		if d.Err != nil {
			continue
		}
		for _, rec := range d.Records {
			out[entryKey{d.Doc, rec.Spec}] = rec.Status
		}
	}
	return out
}

// diffEvents lists transitions from base to cur: changed and new entries
// in result order, then dropped entries sorted by document and spec.
func diffEvents(base, cur map[entryKey]Status, res *Result) []ChangeEvent {
	var events []ChangeEvent
	for _, d := range res.Docs {
		if d.Err != nil {
			continue
		}
		for _, rec := range d.Records {
			k := entryKey{d.Doc, rec.Spec}
			old, ok := base[k]
			switch {
			case !ok:
				events = append(events, ChangeEvent{Doc: k.doc, Spec: k.spec, New: rec.Status})
			case old != rec.Status:
				events = append(events, ChangeEvent{Doc: k.doc, Spec: k.spec, Old: old, New: rec.Status})
			}
		}
	}

	var dropped []entryKey
	for k := range base {
		if _, ok := cur[k]; !ok {
			dropped = append(dropped, k)
		}
	}
	sort.Slice(dropped, func(i, j int) bool {
		if dropped[i].doc != dropped[j].doc {
			return dropped[i].doc < dropped[j].doc
		}
		return dropped[i].spec < dropped[j].spec
	})
	for _, k := range dropped {
		events = append(events, ChangeEvent{Doc: k.doc, Spec: k.spec, Old: base[k]})
	}
	return events
}

// addDirsRecursive adds root and all its visible subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
