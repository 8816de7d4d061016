package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corporealshift/driftwatcher/internal/drift"
	"github.com/corporealshift/driftwatcher/internal/pathspec"
)

// Watch scans target once, then re-scans whenever files under the
// project change, printing entries whose status moved. It blocks until
// ctx is cancelled.
func Watch(ctx context.Context, env *Env, target string) error {
	eng := env.Engine()

	res, err := eng.Scan(ctx, target)
	if err != nil {
		return err
	}
	sum := res.Summary()
	fmt.Fprintf(env.Stdout, "Found %d current, %d drifted, %d missing\n",
		sum.Current, sum.Drifted, sum.Missing)

	root := watchRoot(target, env.Config.Scan.RootMarker)
	fmt.Fprintf(env.Stdout, "Watching %s for changes (Ctrl-C to stop)\n", root)

	m := drift.NewMonitor(eng, target, root, env.Log)
	return m.Run(ctx, func(ev drift.ChangeEvent, _ drift.Summary) {
		switch {
		case ev.Old == "":
			fmt.Fprintf(env.Stdout, "%s: %s is %s\n", ev.Doc, ev.Spec, ev.New)
		case ev.New == "":
			fmt.Fprintf(env.Stdout, "%s: %s no longer tracked (was %s)\n", ev.Doc, ev.Spec, ev.Old)
		default:
			fmt.Fprintf(env.Stdout, "%s: %s %s -> %s\n", ev.Doc, ev.Spec, ev.Old, ev.New)
		}
	})
}

// watchRoot picks the directory whose subtree the monitor watches: the
// project root when one is discoverable, otherwise the target directory
// itself. Tracked sources may live outside the docs tree, so watching
// only the target would miss their edits.
func watchRoot(target, marker string) string {
	dir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		dir = filepath.Dir(target)
	}
	if root, err := pathspec.FindRoot(dir, marker); err == nil {
		return root
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
