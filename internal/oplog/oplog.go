// Package oplog persists committed edits as an append-only JSONL file, one
// operation per line. The log tolerates corrupt lines on read so a damaged
// file never blocks opening a project; Compact rewrites the file with only
// the lines that parse.
package oplog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the edit recorded in a log entry.
type Kind string

const (
	KindClipAdd      Kind = "clip_add"
	KindClipRemove   Kind = "clip_remove"
	KindClipMove     Kind = "clip_move"
	KindClipTrim     Kind = "clip_trim"
	KindClipSplit    Kind = "clip_split"
	KindMarkerAdd    Kind = "marker_add"
	KindMarkerRemove Kind = "marker_remove"
	KindBatch        Kind = "batch"
)

// Operation is one entry in the ops log. PrevOpID links an undo or redo
// entry back to the operation it derives from; Inverse carries the
// operation that reverts this one.
type Operation struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	PrevOpID  string          `json:"prevOpId,omitempty"`
	Inverse   *Operation      `json:"inverse,omitempty"`
}

// NewOperation builds an operation with a fresh ID, the current UTC time and
// the marshaled payload.
func NewOperation(kind Kind, payload any) (Operation, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Operation{}, fmt.Errorf("marshal payload: %w", err)
	}
	return Operation{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Payload:   data,
	}, nil
}

// DecodePayload unmarshals the operation payload into v.
func (o Operation) DecodePayload(v any) error {
	if err := json.Unmarshal(o.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", o.Kind, err)
	}
	return nil
}

// LineError records a log line that failed to parse.
type LineError struct {
	Line int // 1-indexed
	Err  string
}

// ReadResult holds the operations that parsed and the lines that did not.
type ReadResult struct {
	Operations []Operation
	Errors     []LineError
}

// Log is an append-only JSONL operation log.
type Log struct {
	path string
}

// New returns a log backed by the file at path. The file is created on first
// append.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file path.
func (l *Log) Path() string { return l.path }

// Append writes one operation as a single line.
func (l *Log) Append(op Operation) error {
	return l.AppendBatch([]Operation{op})
}

// AppendBatch writes the operations as consecutive lines in one open of the
// file, creating it and its parent directory as needed.
func (l *Log) AppendBatch(ops []Operation) error {
	if len(ops) == 0 {
		return nil
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ops log dir: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ops log: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, op := range ops {
		data, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("marshal operation %s: %w", op.ID, err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write operation %s: %w", op.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush ops log: %w", err)
	}
	return nil
}

// ReadAll reads every operation in the log. Blank lines are skipped and
// lines that fail to parse are reported in the result rather than aborting
// the read. A missing file yields an empty result.
func (l *Log) ReadAll() (ReadResult, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return ReadResult{}, nil
	}
	if err != nil {
		return ReadResult{}, fmt.Errorf("open ops log: %w", err)
	}
	defer f.Close()

	var res ReadResult
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var op Operation
		if err := json.Unmarshal([]byte(text), &op); err != nil {
			res.Errors = append(res.Errors, LineError{Line: line, Err: err.Error()})
			continue
		}
		res.Operations = append(res.Operations, op)
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("read ops log: %w", err)
	}
	return res, nil
}

// ReadSince returns the operations recorded after the one with the given ID.
// An unknown ID returns the whole log.
func (l *Log) ReadSince(opID string) (ReadResult, error) {
	all, err := l.ReadAll()
	if err != nil {
		return ReadResult{}, err
	}
	start := 0
	for i, op := range all.Operations {
		if op.ID == opID {
			start = i + 1
			break
		}
	}
	return ReadResult{Operations: all.Operations[start:], Errors: all.Errors}, nil
}

// Last returns the most recent operation, or nil for an empty log.
func (l *Log) Last() (*Operation, error) {
	all, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all.Operations) == 0 {
		return nil, nil
	}
	op := all.Operations[len(all.Operations)-1]
	return &op, nil
}

// Count returns the number of parseable operations in the log.
func (l *Log) Count() (int, error) {
	all, err := l.ReadAll()
	if err != nil {
		return 0, err
	}
	return len(all.Operations), nil
}

// Compact rewrites the log keeping only the lines that parse, replacing the
// file atomically. It returns the number of dropped lines.
func (l *Log) Compact() (int, error) {
	all, err := l.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(all.Errors) == 0 {
		return 0, nil
	}

	tmp := l.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create compact file: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, op := range all.Operations {
		data, err := json.Marshal(op)
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return 0, fmt.Errorf("marshal operation %s: %w", op.ID, err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			f.Close()
			os.Remove(tmp)
			return 0, fmt.Errorf("write compact file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, fmt.Errorf("flush compact file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("close compact file: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("replace ops log: %w", err)
	}
	return len(all.Errors), nil
}
