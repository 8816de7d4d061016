package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/corporealshift/driftwatcher/internal/drift"
	"github.com/corporealshift/driftwatcher/internal/reconcile"
)

// Check scans for drift and walks the user through accepting updates.
// Accepted drifted entries get their stored hash replaced; accepted
// missing entries are removed. Parse errors in individual documents are
// reported at the end and never fail the run.
func Check(ctx context.Context, env *Env, target string) error {
	res, err := env.Engine().Scan(ctx, target)
	if err != nil {
		return err
	}

	for _, d := range res.Docs {
		if d.Err != nil {
			continue
		}
		for _, rec := range d.Records {
			switch rec.Status {
			case drift.StatusMissing:
				fmt.Fprintf(env.Stderr, "MISSING: %s -> %s\n", d.Doc, rec.Spec)
			case drift.StatusInvalid:
				if rec.StoredHash == "" {
					fmt.Fprintf(env.Stderr, "INVALID: %s -> %s (no hash)\n", d.Doc, rec.Spec)
				} else {
					fmt.Fprintf(env.Stderr, "INVALID: %s -> %s (unresolvable)\n", d.Doc, rec.Spec)
				}
			}
		}
	}

	sum := res.Summary()
	fmt.Fprintf(env.Stdout, "\nFound %d current, %d drifted, %d missing\n", sum.Current, sum.Drifted, sum.Missing)

	session := reconcile.NewSession(res)
	if len(session.Items()) == 0 {
		if sum.Current > 0 {
			fmt.Fprintln(env.Stdout, "All documentation is up-to-date!")
		}
	} else if err := runSession(env, session); err != nil {
		return err
	}

	reportBroken(env.Stderr, res)
	return nil
}

// runSession drives the reconciliation state machine over line input:
// a number toggles that entry, 'a' selects all, 'n' clears, 'c' or a
// bare return confirms, 'q' quits without writing.
func runSession(env *Env, s *reconcile.Session) error {
	in := bufio.NewScanner(env.Stdin)
	fmt.Fprintln(env.Stdout, "\nSelect entries to update (number to toggle, 'a' all, 'n' none, 'c' confirm, 'q' quit):")

	for s.State() == reconcile.StateBrowsing {
		printItems(env.Stdout, s)
		fmt.Fprint(env.Stdout, "> ")
		if !in.Scan() {
			_ = s.Abort()
			fmt.Fprintln(env.Stdout)
			break
		}

		switch input := strings.TrimSpace(in.Text()); input {
		case "a":
			_ = s.SelectAll()
		case "n":
			_ = s.SelectNone()
		case "q":
			_ = s.Abort()
		case "c", "":
			if len(s.Selected()) > 0 {
				_ = s.Confirm()
				continue
			}
			fmt.Fprint(env.Stdout, "No entries selected. Apply nothing and exit? [y/N] ")
			if in.Scan() && strings.EqualFold(strings.TrimSpace(in.Text()), "y") {
				_ = s.ConfirmNone()
			}
		default:
			idx, err := strconv.Atoi(input)
			if err != nil || idx < 1 || idx > len(s.Items()) {
				fmt.Fprintf(env.Stdout, "Unknown command %q\n", input)
				continue
			}
			_ = s.MoveCursor(idx - 1 - s.Cursor())
			_ = s.Toggle()
		}
	}
	if err := in.Err(); err != nil {
		return err
	}

	switch s.State() {
	case reconcile.StateCancelled:
		fmt.Fprintln(env.Stdout, "No changes applied.")
	case reconcile.StateConfirmed:
		n := len(s.Selected())
		if err := s.Apply(reconcile.NewUpdater(env.Log)); err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(env.Stdout, "No entries selected.")
		} else {
			fmt.Fprintf(env.Stdout, "Updated %d entries.\n", n)
		}
	}
	return nil
}

func printItems(w io.Writer, s *reconcile.Session) {
	for i, it := range s.Items() {
		mark := " "
		if it.Selected {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %d. %s: %s (%s)\n", mark, i+1, it.Doc, it.Record.Spec, it.Record.Status)
	}
}

func reportBroken(w io.Writer, res *drift.Result) {
	broken := res.Broken()
	if len(broken) == 0 {
		return
	}
	fmt.Fprintln(w, "\nWarning: The following files had errors:")
	for _, d := range broken {
		fmt.Fprintf(w, "  %s: %v\n", d.Doc, d.Err)
	}
}
