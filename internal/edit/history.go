package edit

import (
	"fmt"

	"github.com/cutline/cutline/internal/oplog"
	"github.com/cutline/cutline/internal/timeline"
)

// MaxHistory is the default cap on undo entries.
const MaxHistory = 100

type historyEntry struct {
	opID    string
	cmd     Command
	inverse Command
}

// History executes commands, stacks them for undo/redo, and journals every
// application in the ops log. Undo and redo are journaled as operations of
// their own, each linked via PrevOpID to the operation it reverses, so the
// log always reflects the exact mutation order.
type History struct {
	log      *oplog.Log // nil disables journaling
	undo     []historyEntry
	redo     []historyEntry
	max      int
	lastOpID string
}

// NewHistory returns a history journaling to log. A nil log keeps undo/redo
// working without persistence.
func NewHistory(log *oplog.Log) *History {
	return &History{log: log, max: MaxHistory}
}

// SetMaxEntries caps the undo stack depth. Values below 1 are ignored.
func (h *History) SetMaxEntries(n int) {
	if n >= 1 {
		h.max = n
	}
}

// Apply executes cmd against seq, clears the redo stack, and pushes the
// entry onto the undo stack. A nil cmd is a no-op. The sequence is unchanged
// when the command errors.
func (h *History) Apply(seq *timeline.Sequence, cmd Command) error {
	if cmd == nil {
		return nil
	}
	inverse, err := cmd.Apply(seq)
	if err != nil {
		return err
	}
	opID, err := h.journal(cmd, inverse, h.lastOpID)
	if err != nil {
		return err
	}

	h.redo = h.redo[:0]
	h.undo = append(h.undo, historyEntry{opID: opID, cmd: cmd, inverse: inverse})
	if excess := len(h.undo) - h.max; excess > 0 {
		n := copy(h.undo, h.undo[excess:])
		h.undo = h.undo[:n]
	}
	return nil
}

// Undo reverts the most recent command and moves it to the redo stack.
// Returns ErrNothingToUndo on an empty stack.
func (h *History) Undo(seq *timeline.Sequence) error {
	if len(h.undo) == 0 {
		return ErrNothingToUndo
	}
	entry := h.undo[len(h.undo)-1]
	redoCmd, err := entry.inverse.Apply(seq)
	if err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	h.undo = h.undo[:len(h.undo)-1]

	opID, err := h.journal(entry.inverse, redoCmd, entry.opID)
	if err != nil {
		return err
	}
	h.redo = append(h.redo, historyEntry{opID: opID, cmd: redoCmd, inverse: entry.inverse})
	return nil
}

// Redo re-applies the most recently undone command. Returns ErrNothingToRedo
// on an empty stack.
func (h *History) Redo(seq *timeline.Sequence) error {
	if len(h.redo) == 0 {
		return ErrNothingToRedo
	}
	entry := h.redo[len(h.redo)-1]
	undoCmd, err := entry.cmd.Apply(seq)
	if err != nil {
		return fmt.Errorf("redo: %w", err)
	}
	h.redo = h.redo[:len(h.redo)-1]

	opID, err := h.journal(entry.cmd, undoCmd, entry.opID)
	if err != nil {
		return err
	}
	h.undo = append(h.undo, historyEntry{opID: opID, cmd: entry.cmd, inverse: undoCmd})
	return nil
}

// CanUndo reports whether the undo stack has entries.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo stack has entries.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoCount returns the undo stack depth.
func (h *History) UndoCount() int { return len(h.undo) }

// RedoCount returns the redo stack depth.
func (h *History) RedoCount() int { return len(h.redo) }

// LastOpID returns the ID of the most recently journaled operation.
func (h *History) LastOpID() string { return h.lastOpID }

// Clear drops both stacks. The journal keeps its entries.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// journal writes the applied command to the ops log with its inverse
// attached. The command is marshaled after Apply so fields realized at run
// time, like generated clip IDs, are recorded for replay.
func (h *History) journal(cmd, inverse Command, prevOpID string) (string, error) {
	op, err := oplog.NewOperation(cmd.Kind(), cmd)
	if err != nil {
		return "", fmt.Errorf("journal %s: %w", cmd.Kind(), err)
	}
	op.PrevOpID = prevOpID
	if inverse != nil {
		invOp, err := oplog.NewOperation(inverse.Kind(), inverse)
		if err != nil {
			return "", fmt.Errorf("journal %s inverse: %w", cmd.Kind(), err)
		}
		op.Inverse = &invOp
	}
	if h.log != nil {
		if err := h.log.Append(op); err != nil {
			return "", fmt.Errorf("journal %s: %w", cmd.Kind(), err)
		}
	}
	h.lastOpID = op.ID
	return op.ID, nil
}
