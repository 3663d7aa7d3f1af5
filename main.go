package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atomicstack/walink/internal/app"
	"github.com/atomicstack/walink/internal/config"
	"github.com/atomicstack/walink/internal/engine/whatsapp"
	"github.com/atomicstack/walink/internal/logging"
	"github.com/atomicstack/walink/internal/logging/events"
	"golang.org/x/term"
)

func main() {
	cfg := config.MustLoad()
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)

	events.App.Start(startupTracePayload(cfg))

	if err := app.Run(cfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// startupTracePayload records which engine walink starts against, where the
// linked device lives and what the terminal looks like.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":     cfg.Args,
		"flags":    flags,
		"config":   cfg,
		"engine":   engineMode(cfg.App),
		"terminal": collectTerminal(),
	}
	if !cfg.App.Demo {
		payload["deviceStore"] = describeStore(cfg.App.DataDir)
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	}
	return payload
}

func engineMode(cfg app.Config) string {
	if cfg.Demo {
		return "demo"
	}
	return "whatsapp"
}

type deviceStore struct {
	Path   string `json:"path"`
	Linked bool   `json:"linked"`
	Error  string `json:"error,omitempty"`
}

// describeStore reports the device store path and whether an earlier run
// already left a linked device there.
func describeStore(dataDir string) deviceStore {
	store := deviceStore{Path: filepath.Join(dataDir, whatsapp.StoreFile)}
	info, err := os.Stat(store.Path)
	switch {
	case err == nil:
		store.Linked = info.Size() > 0
	case !os.IsNotExist(err):
		store.Error = err.Error()
	}
	return store
}

type terminal struct {
	Size        *terminalSize `json:"size,omitempty"`
	Descriptors []descriptor  `json:"descriptors"`
}

type terminalSize struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type descriptor struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTerminal checks the standard descriptors. The first one with a
// size decides how large the QR code can be drawn.
func collectTerminal() terminal {
	files := []*os.File{os.Stdin, os.Stdout, os.Stderr}
	names := []string{"stdin", "stdout", "stderr"}
	out := terminal{Descriptors: make([]descriptor, 0, len(files))}
	for i, f := range files {
		d := descriptor{Name: names[i]}
		fd := int(f.Fd())
		if fd >= 0 && term.IsTerminal(fd) {
			d.IsTerminal = true
			width, height, err := term.GetSize(fd)
			if err != nil {
				d.Error = err.Error()
			} else {
				d.Width, d.Height = width, height
				if out.Size == nil {
					out.Size = &terminalSize{Source: d.Name, Width: width, Height: height}
				}
			}
		}
		out.Descriptors = append(out.Descriptors, d)
	}
	return out
}
