// Package project persists sequences to a SQLite project file. The store is
// the authoritative snapshot of the edited timeline; the ops log next to it
// is the append-only journal of how it got there.
package project

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cutline/cutline/internal/timeline"
)

// Store wraps the project database connection.
type Store struct {
	db *sql.DB
}

// SequenceInfo is one row of the sequence listing.
type SequenceInfo struct {
	ID        string
	Name      string
	UpdatedAt time.Time
}

// DefaultPath returns the project database path used when none is configured.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cutline", "project.sqlite")
}

// Open opens (creating if needed) the project database and applies the
// schema. The single-connection pool keeps writes serialized under WAL.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sequences (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		updatedAt REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		sequenceId TEXT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		locked INTEGER NOT NULL DEFAULT 0,
		muted INTEGER NOT NULL DEFAULT 0,
		visible INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS clips (
		id TEXT PRIMARY KEY,
		trackId TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
		assetId TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		sourceIn REAL NOT NULL,
		sourceOut REAL NOT NULL,
		timelineIn REAL NOT NULL,
		speed REAL NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS markers (
		id TEXT PRIMARY KEY,
		sequenceId TEXT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
		time REAL NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_sequence ON tracks(sequenceId, position);
	CREATE INDEX IF NOT EXISTS idx_clips_track ON clips(trackId, timelineIn);
	CREATE INDEX IF NOT EXISTS idx_markers_sequence ON markers(sequenceId, time);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSequence replaces the stored sequence with seq in one transaction.
func (s *Store) SaveSequence(seq *timeline.Sequence) error {
	if seq == nil || seq.ID == "" {
		return fmt.Errorf("save sequence: missing ID")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	// Deleting the sequence row cascades through tracks, clips and markers.
	if _, err := tx.Exec(`DELETE FROM sequences WHERE id = ?`, seq.ID); err != nil {
		return fmt.Errorf("clear sequence: %w", err)
	}

	now := float64(time.Now().UnixNano()) / 1e9
	if _, err := tx.Exec(`
		INSERT INTO sequences (id, name, updatedAt) VALUES (?, ?, ?)
	`, seq.ID, seq.Name, now); err != nil {
		return fmt.Errorf("insert sequence: %w", err)
	}

	for pos, track := range seq.Tracks {
		if _, err := tx.Exec(`
			INSERT INTO tracks (id, sequenceId, position, kind, name, locked, muted, visible)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, track.ID, seq.ID, pos, string(track.Kind), track.Name,
			track.Locked, track.Muted, track.Visible); err != nil {
			return fmt.Errorf("insert track %s: %w", track.ID, err)
		}
		for _, clip := range track.Clips {
			if _, err := tx.Exec(`
				INSERT INTO clips (id, trackId, assetId, label, sourceIn, sourceOut, timelineIn, speed)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, clip.ID, track.ID, clip.AssetID, clip.Label,
				clip.SourceIn, clip.SourceOut, clip.TimelineIn, clip.Speed); err != nil {
				return fmt.Errorf("insert clip %s: %w", clip.ID, err)
			}
		}
	}

	for _, m := range seq.Markers {
		if _, err := tx.Exec(`
			INSERT INTO markers (id, sequenceId, time, label, color)
			VALUES (?, ?, ?, ?, ?)
		`, m.ID, seq.ID, m.Time, m.Label, m.Color); err != nil {
			return fmt.Errorf("insert marker %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// LoadSequence reconstructs the sequence with the given ID, or returns
// (nil, nil) when it does not exist.
func (s *Store) LoadSequence(id string) (*timeline.Sequence, error) {
	row := s.db.QueryRow(`SELECT id, name FROM sequences WHERE id = ?`, id)

	seq := &timeline.Sequence{}
	if err := row.Scan(&seq.ID, &seq.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan sequence: %w", err)
	}

	// The single-connection pool means each query must be fully consumed
	// before the next one starts.
	tracks, err := s.loadTracks(id)
	if err != nil {
		return nil, err
	}
	for i := range tracks {
		clips, err := s.loadClips(tracks[i].ID)
		if err != nil {
			return nil, err
		}
		tracks[i].Clips = clips
	}
	seq.Tracks = tracks

	markers, err := s.loadMarkers(id)
	if err != nil {
		return nil, err
	}
	seq.Markers = markers

	return seq, nil
}

func (s *Store) loadTracks(sequenceID string) ([]timeline.Track, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, name, locked, muted, visible
		FROM tracks
		WHERE sequenceId = ?
		ORDER BY position ASC
	`, sequenceID)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []timeline.Track
	for rows.Next() {
		var t timeline.Track
		var kind string
		if err := rows.Scan(&t.ID, &kind, &t.Name, &t.Locked, &t.Muted, &t.Visible); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		t.Kind = timeline.Kind(kind)
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (s *Store) loadClips(trackID string) ([]timeline.Clip, error) {
	rows, err := s.db.Query(`
		SELECT id, assetId, label, sourceIn, sourceOut, timelineIn, speed
		FROM clips
		WHERE trackId = ?
		ORDER BY timelineIn ASC, id ASC
	`, trackID)
	if err != nil {
		return nil, fmt.Errorf("query clips: %w", err)
	}
	defer rows.Close()

	var clips []timeline.Clip
	for rows.Next() {
		var c timeline.Clip
		if err := rows.Scan(&c.ID, &c.AssetID, &c.Label,
			&c.SourceIn, &c.SourceOut, &c.TimelineIn, &c.Speed); err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		c.TrackID = trackID
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

func (s *Store) loadMarkers(sequenceID string) ([]timeline.Marker, error) {
	rows, err := s.db.Query(`
		SELECT id, time, label, color
		FROM markers
		WHERE sequenceId = ?
		ORDER BY time ASC, id ASC
	`, sequenceID)
	if err != nil {
		return nil, fmt.Errorf("query markers: %w", err)
	}
	defer rows.Close()

	var markers []timeline.Marker
	for rows.Next() {
		var m timeline.Marker
		if err := rows.Scan(&m.ID, &m.Time, &m.Label, &m.Color); err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// ListSequences returns the stored sequences, most recently saved first.
func (s *Store) ListSequences() ([]SequenceInfo, error) {
	rows, err := s.db.Query(`
		SELECT id, name, updatedAt
		FROM sequences
		ORDER BY updatedAt DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sequences: %w", err)
	}
	defer rows.Close()

	var infos []SequenceInfo
	for rows.Next() {
		var info SequenceInfo
		var updatedAt float64
		if err := rows.Scan(&info.ID, &info.Name, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		info.UpdatedAt = timeFromUnix(updatedAt)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
