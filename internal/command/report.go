package command

import (
	"context"
	"fmt"

	"github.com/corporealshift/driftwatcher/internal/report"
)

// Report renders the status of every tracked entry under target. It
// succeeds when everything is CURRENT or merely INVALID and returns
// ErrProblemsFound when anything drifted or went missing, so CI can gate
// on the exit code.
func Report(ctx context.Context, env *Env, target, format string) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}

	res, err := env.Engine().Scan(ctx, target)
	if err != nil {
		return err
	}
	for _, d := range res.Broken() {
		fmt.Fprintf(env.Stderr, "Warning: %s: %v\n", d.Doc, d.Err)
	}
	if err := report.Render(env.Stdout, res, f); err != nil {
		return err
	}

	if res.Summary().HasProblems() {
		return ErrProblemsFound
	}
	return nil
}
