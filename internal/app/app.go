package app

import (
	"errors"
	"time"

	"github.com/atomicstack/walink/internal/backend"
	"github.com/atomicstack/walink/internal/engine"
	"github.com/atomicstack/walink/internal/engine/sim"
	"github.com/atomicstack/walink/internal/engine/whatsapp"
	"github.com/atomicstack/walink/internal/logging"
	"github.com/atomicstack/walink/internal/state"
	"github.com/atomicstack/walink/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Config describes user-provided application options.
type Config struct {
	DataDir    string
	Demo       bool
	Width      int
	Height     int
	ShowFooter bool
	Policy     state.Policy
	NoticeTTL  time.Duration
	PickerDir  string
}

// NewEngine picks the protocol engine for cfg.
func NewEngine(cfg Config) engine.Engine {
	if cfg.Demo {
		return sim.New(sim.DefaultOptions())
	}
	return whatsapp.New(cfg.DataDir)
}

// NewModel subscribes to eng and builds the UI model around it. A failed
// subscription does not stop the program; the model shows it instead. The
// returned watcher is nil in that case.
func NewModel(cfg Config, eng engine.Engine) (*ui.Model, *backend.Watcher) {
	watcher, err := backend.NewWatcher(eng)
	if err != nil {
		logging.Error(err)
	}
	model := ui.NewModel(eng, watcher, ui.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Policy:     cfg.Policy,
		NoticeTTL:  cfg.NoticeTTL,
		PickerDir:  cfg.PickerDir,
		SetupErr:   err,
	})
	return model, watcher
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	eng := NewEngine(cfg)
	defer func() {
		if err := eng.Close(); err != nil {
			logging.Error(err)
		}
	}()
	model, watcher := NewModel(cfg, eng)
	if watcher != nil {
		defer watcher.Stop()
	}
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
