// Package edit applies committed changes to the sequence graph. Commands
// validate, mutate, and return their own inverse; History stacks them for
// undo/redo and records every application in the ops log. This layer is the
// only code that mutates a Sequence.
package edit

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cutline/cutline/internal/drag"
	"github.com/cutline/cutline/internal/oplog"
	"github.com/cutline/cutline/internal/timeline"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrOverlap       = errors.New("clips would overlap")
	ErrInvalid       = errors.New("invalid edit")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// durationSlack absorbs float rounding in durations derived from
// slide-clamped offsets, which can land a hair under the minimum.
const durationSlack = 1e-9

// Command is one reversible mutation of a sequence. Apply validates its
// inputs against the current state, mutates the sequence, and returns the
// command that reverts it. On error the sequence is unchanged.
type Command interface {
	Kind() oplog.Kind
	Apply(seq *timeline.Sequence) (Command, error)
}

// Batch applies commands in order as one undoable step. If any command
// fails, the already-applied ones are rolled back and the sequence is left
// as it was.
type Batch struct {
	Commands []Command
}

// Kind returns the batch operation kind.
func (b *Batch) Kind() oplog.Kind { return oplog.KindBatch }

// Apply runs each command in order. The inverse is a batch of the collected
// inverses in reverse order.
func (b *Batch) Apply(seq *timeline.Sequence) (Command, error) {
	inverses := make([]Command, 0, len(b.Commands))
	for i, cmd := range b.Commands {
		inv, err := cmd.Apply(seq)
		if err != nil {
			// Unwind what already applied, most recent first.
			for j := len(inverses) - 1; j >= 0; j-- {
				if _, rbErr := inverses[j].Apply(seq); rbErr != nil {
					return nil, fmt.Errorf("batch command %d: %w (rollback also failed: %v)", i, err, rbErr)
				}
			}
			return nil, fmt.Errorf("batch command %d: %w", i, err)
		}
		inverses = append(inverses, inv)
	}
	reversed := make([]Command, len(inverses))
	for i, inv := range inverses {
		reversed[len(inverses)-1-i] = inv
	}
	return &Batch{Commands: reversed}, nil
}

// MarshalJSON emits each inner command with its kind so the logged payload
// stays self-describing.
func (b *Batch) MarshalJSON() ([]byte, error) {
	type entry struct {
		Kind    oplog.Kind `json:"kind"`
		Payload Command    `json:"payload"`
	}
	entries := make([]entry, len(b.Commands))
	for i, cmd := range b.Commands {
		entries[i] = entry{Kind: cmd.Kind(), Payload: cmd}
	}
	return json.Marshal(struct {
		Commands []entry `json:"commands"`
	}{Commands: entries})
}

// FromChange converts a drag engine change description into a command.
func FromChange(ch drag.Change) Command {
	switch c := ch.(type) {
	case drag.MoveChange:
		return &MoveClip{
			SequenceID:    c.SequenceID,
			ClipID:        c.ClipID,
			NewTimelineIn: c.NewTimelineIn,
			NewTrackID:    c.NewTrackID,
		}
	case drag.TrimChange:
		return &TrimClip{
			SequenceID:    c.SequenceID,
			ClipID:        c.ClipID,
			NewSourceIn:   c.NewSourceIn,
			NewSourceOut:  c.NewSourceOut,
			NewTimelineIn: c.NewTimelineIn,
		}
	}
	return nil
}

// FromChanges converts a set of engine changes into a single undoable
// command: one change maps to its command, several wrap into a batch, none
// maps to nil.
func FromChanges(changes []drag.Change) Command {
	switch len(changes) {
	case 0:
		return nil
	case 1:
		return FromChange(changes[0])
	}
	cmds := make([]Command, 0, len(changes))
	for _, ch := range changes {
		if cmd := FromChange(ch); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return &Batch{Commands: cmds}
}

// requireSequence checks the command addresses the sequence it is applied to.
func requireSequence(seq *timeline.Sequence, sequenceID string) error {
	if seq == nil {
		return fmt.Errorf("sequence %s: %w", sequenceID, ErrNotFound)
	}
	if sequenceID != "" && seq.ID != sequenceID {
		return fmt.Errorf("sequence %s: %w", sequenceID, ErrNotFound)
	}
	return nil
}
