// Command cutline is a terminal timeline editor. It opens a project
// database, loads the most recently saved sequence, and runs the
// interactive editor fullscreen with mouse support.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cutline/cutline/internal/app"
	"github.com/cutline/cutline/internal/config"
	"github.com/cutline/cutline/internal/edit"
	"github.com/cutline/cutline/internal/logging"
	"github.com/cutline/cutline/internal/oplog"
	"github.com/cutline/cutline/internal/project"
	"github.com/cutline/cutline/internal/timeline"
)

// opsLogFile sits next to the project database and records every committed
// edit as one JSON line.
const opsLogFile = "ops.jsonl"

func main() {
	configPath := flag.String("config", "", "path to config file")
	projectPath := flag.String("project", "", "project database path (overrides config)")
	sequenceID := flag.String("sequence", "", "sequence ID to open, defaults to the most recent")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("load config", err)
	}

	// The editor owns the terminal, so the log goes to a file. An empty
	// path disables logging entirely.
	logger, err := logging.New(cfg.Logging.Path, cfg.Logging.Level)
	if err != nil {
		fatal("open log", err)
	}

	dbPath := cfg.Project.Path
	if *projectPath != "" {
		dbPath = *projectPath
	}
	if dbPath == "" {
		dbPath = project.DefaultPath()
	}

	store, err := project.Open(dbPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dbPath).Msg("open project failed")
		fatal("open project", err)
	}
	defer store.Close()

	seq, err := openSequence(store, *sequenceID)
	if err != nil {
		logger.Error().Err(err).Msg("load sequence failed")
		fatal("load sequence", err)
	}

	journal := oplog.New(filepath.Join(filepath.Dir(dbPath), opsLogFile))
	history := edit.NewHistory(journal)

	logger.Info().
		Str("project", dbPath).
		Str("sequence", seq.Name).
		Int("tracks", len(seq.Tracks)).
		Msg("starting cutline")

	m := app.New(seq, history, store, cfg, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("editor exited with error")
		fatal("run editor", err)
	}
}

// openSequence loads the requested sequence, or the most recently saved one
// when no ID is given. A fresh project is seeded with an empty default
// sequence so the editor always has something to show.
func openSequence(store *project.Store, id string) (*timeline.Sequence, error) {
	if id != "" {
		seq, err := store.LoadSequence(id)
		if err != nil {
			return nil, err
		}
		if seq == nil {
			return nil, fmt.Errorf("sequence %s not found", id)
		}
		return seq, nil
	}

	infos, err := store.ListSequences()
	if err != nil {
		return nil, err
	}
	if len(infos) > 0 {
		seq, err := store.LoadSequence(infos[0].ID)
		if err != nil {
			return nil, err
		}
		if seq != nil {
			return seq, nil
		}
	}

	seq := timeline.NewSequence("Sequence 1")
	seq.Tracks = []timeline.Track{
		timeline.NewTrack(timeline.KindVideo, "Video 1"),
		timeline.NewTrack(timeline.KindAudio, "Audio 1"),
	}
	if err := store.SaveSequence(seq); err != nil {
		return nil, err
	}
	return seq, nil
}

// fatal prints the error to stderr and exits. The file logger may be
// disabled, so startup failures always reach the terminal.
func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "cutline: %s: %v\n", what, err)
	os.Exit(1)
}
