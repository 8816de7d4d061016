// Package reconcile drives the interactive acceptance of drifted and
// missing entries: a turn-based state machine over one scan's actionable
// records, and the applier that commits accepted choices back to the
// owning documents.
package reconcile

import (
	"fmt"

	"github.com/corporealshift/driftwatcher/internal/drift"
)

// State is the lifecycle of one session.
type State string

const (
	// StateBrowsing accepts cursor movement and selection changes.
	StateBrowsing State = "browsing"
	// StateConfirmed means the user committed their selection; the only
	// way forward is Apply.
	StateConfirmed State = "confirmed"
	// StateApplied is terminal: accepted choices were written out.
	StateApplied State = "applied"
	// StateCancelled is terminal: no writes happened.
	StateCancelled State = "cancelled"
)

// Item is one actionable record and its selection flag.
type Item struct {
	Doc      string
	Record   drift.Record
	Selected bool
}

// Applier commits the selected items to storage.
type Applier interface {
	Apply(selected []Item) error
}

// Session is a turn-based selection flow over the DRIFTED and MISSING
// records of one scan. It performs no I/O itself; Apply delegates every
// write to the given Applier, and nothing is written before Confirm.
type Session struct {
	items  []Item
	cursor int
	state  State
}

// NewSession builds a session over the scan's eligible records. Records
// with other statuses are not actionable and never enter the session.
func NewSession(res *drift.Result) *Session {
	s := &Session{state: StateBrowsing}
	for _, er := range res.Eligible() {
		s.items = append(s.items, Item{Doc: er.Doc, Record: er.Record})
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Items returns the session's items in scan order.
func (s *Session) Items() []Item {
	return s.items
}

// Cursor returns the index of the highlighted item.
func (s *Session) Cursor() int {
	return s.cursor
}

// Selected returns the currently selected items in scan order.
func (s *Session) Selected() []Item {
	var out []Item
	for _, it := range s.items {
		if it.Selected {
			out = append(out, it)
		}
	}
	return out
}

// MoveCursor shifts the highlight by delta, clamped to the item range.
func (s *Session) MoveCursor(delta int) error {
	if err := s.requireBrowsing("move cursor"); err != nil {
		return err
	}
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if max := len(s.items) - 1; s.cursor > max && max >= 0 {
		s.cursor = max
	}
	return nil
}

// Toggle flips the selection of the highlighted item.
func (s *Session) Toggle() error {
	if err := s.requireBrowsing("toggle"); err != nil {
		return err
	}
	if len(s.items) == 0 {
		return fmt.Errorf("reconcile: nothing to toggle")
	}
	s.items[s.cursor].Selected = !s.items[s.cursor].Selected
	return nil
}

// SelectAll marks every item selected.
func (s *Session) SelectAll() error {
	if err := s.requireBrowsing("select all"); err != nil {
		return err
	}
	for i := range s.items {
		s.items[i].Selected = true
	}
	return nil
}

// SelectNone clears every selection.
func (s *Session) SelectNone() error {
	if err := s.requireBrowsing("select none"); err != nil {
		return err
	}
	for i := range s.items {
		s.items[i].Selected = false
	}
	return nil
}

// Confirm commits the selection and moves to Confirmed. It refuses an
// empty selection; use ConfirmNone when the user explicitly accepts
// applying nothing.
func (s *Session) Confirm() error {
	if err := s.requireBrowsing("confirm"); err != nil {
		return err
	}
	if len(s.Selected()) == 0 {
		return fmt.Errorf("reconcile: nothing selected; confirm requires at least one selection")
	}
	s.state = StateConfirmed
	return nil
}

// ConfirmNone commits an explicitly empty selection.
func (s *Session) ConfirmNone() error {
	if err := s.requireBrowsing("confirm"); err != nil {
		return err
	}
	for i := range s.items {
		s.items[i].Selected = false
	}
	s.state = StateConfirmed
	return nil
}

// Abort ends the session without writing anything. Aborting a terminal
// session is an error.
func (s *Session) Abort() error {
	if s.state == StateApplied || s.state == StateCancelled {
		return fmt.Errorf("reconcile: cannot abort in state %s", s.state)
	}
	s.state = StateCancelled
	return nil
}

// Apply hands the selected items to the applier and moves to the
// terminal Applied state. The session ends even when some writes fail;
// the returned error carries every collected failure.
func (s *Session) Apply(a Applier) error {
	if s.state != StateConfirmed {
		return fmt.Errorf("reconcile: cannot apply in state %s", s.state)
	}
	err := a.Apply(s.Selected())
	s.state = StateApplied
	return err
}

func (s *Session) requireBrowsing(op string) error {
	if s.state != StateBrowsing {
		return fmt.Errorf("reconcile: cannot %s in state %s", op, s.state)
	}
	return nil
}
