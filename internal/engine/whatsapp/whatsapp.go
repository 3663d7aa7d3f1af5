// Package whatsapp drives a linked WhatsApp device through whatsmeow. The
// device keys live in a sqlite store so a restart reconnects without a new
// QR scan.
package whatsapp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/atomicstack/walink/internal/engine"
	"github.com/atomicstack/walink/internal/logging/events"
	"github.com/atomicstack/walink/internal/media"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waEvents "go.mau.fi/whatsmeow/types/events"
	_ "modernc.org/sqlite"
)

// StoreFile is the device store name inside the data directory.
const StoreFile = "whatsapp.db"

// Engine implements engine.Engine on top of a whatsmeow client.
type Engine struct {
	*engine.Emitter

	dataDir string
	log     logger

	mu          sync.Mutex
	initialized bool
	ready       bool
	closed      bool
	container   *sqlstore.Container
	client      *whatsmeow.Client
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// New returns an engine whose device store lives under dataDir. Nothing is
// opened until Initialize.
func New(dataDir string) *Engine {
	return &Engine{
		Emitter: engine.NewEmitter(),
		dataDir: dataDir,
		log:     newLogger("whatsmeow"),
	}
}

// StorePath returns the sqlite file backing the device store.
func (e *Engine) StorePath() string {
	return filepath.Join(e.dataDir, StoreFile)
}

// Initialize opens the device store, connects, and starts emitting qr-code
// events when the device is not linked yet.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return engine.ErrClosed
	}
	if e.initialized {
		e.mu.Unlock()
		return engine.ErrAlreadyInitialized
	}
	e.initialized = true
	e.mu.Unlock()

	if err := os.MkdirAll(e.dataDir, 0o700); err != nil {
		return fmt.Errorf("Failed to create data directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", e.StorePath())
	container, err := sqlstore.New(ctx, "sqlite", dsn, e.log.Sub("store"))
	if err != nil {
		return fmt.Errorf("Failed to open device store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		container.Close()
		return fmt.Errorf("Failed to load device: %w", err)
	}
	client := whatsmeow.NewClient(device, e.log.Sub("client"))
	client.AddEventHandler(e.handleEvent)

	runCtx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.container = container
	e.client = client
	e.cancel = cancel
	e.mu.Unlock()

	if client.Store.ID == nil {
		qrChan, err := client.GetQRChannel(runCtx)
		if err != nil {
			return fmt.Errorf("Failed to get QR channel: %w", err)
		}
		e.wg.Add(1)
		go e.forwardCodes(qrChan)
	}
	if err := client.Connect(); err != nil {
		return fmt.Errorf("Failed to connect: %w", err)
	}
	return nil
}

func (e *Engine) forwardCodes(qrChan <-chan whatsmeow.QRChannelItem) {
	defer e.wg.Done()
	for item := range qrChan {
		if item.Event == whatsmeow.QRChannelEventCode {
			e.Emit(engine.Event{Name: engine.EventQRCode, Code: item.Code})
			continue
		}
		if item.Error != nil {
			e.log.Errorf("qr channel: %v", item.Error)
			continue
		}
		e.log.Infof("qr channel: %s", item.Event)
	}
}

// handleEvent maps whatsmeow events onto the two walink streams.
func (e *Engine) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *waEvents.PairSuccess:
		e.log.Infof("paired as %s", v.ID)
		e.Emit(engine.Event{Name: engine.EventAuthSuccess})
	case *waEvents.Connected:
		e.setReady(true)
		e.Emit(engine.Event{Name: engine.EventAuthSuccess})
	case *waEvents.LoggedOut:
		e.setReady(false)
		e.log.Warnf("logged out: %v", v.Reason)
	case *waEvents.Disconnected:
		e.setReady(false)
	}
}

func (e *Engine) setReady(ready bool) {
	e.mu.Lock()
	e.ready = ready
	e.mu.Unlock()
}

func (e *Engine) IsReady(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready, nil
}

func (e *Engine) sendTarget(contact string) (*whatsmeow.Client, types.JID, error) {
	e.mu.Lock()
	client, ready := e.client, e.ready
	e.mu.Unlock()
	if client == nil {
		return nil, types.JID{}, engine.ErrNotInitialized
	}
	if !ready {
		return nil, types.JID{}, engine.ErrNotReady
	}
	clean, err := engine.ValidateContact(contact)
	if err != nil {
		return nil, types.JID{}, err
	}
	return client, types.NewJID(clean, types.DefaultUserServer), nil
}

func (e *Engine) SendText(ctx context.Context, contact, body string) (string, error) {
	client, jid, err := e.sendTarget(contact)
	if err != nil {
		return "", err
	}
	return e.send(ctx, client, jid, textMessage(body))
}

func (e *Engine) SendMedia(ctx context.Context, req engine.MediaRequest) (string, error) {
	client, jid, err := e.sendTarget(req.Contact)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return "", fmt.Errorf("Failed to read file: %w", err)
	}
	uploaded, err := client.Upload(ctx, data, mediaType(req.Kind))
	if err != nil {
		return "", fmt.Errorf("Failed to upload media: %w", err)
	}
	id, err := e.send(ctx, client, jid, mediaMessage(req.Kind, req.Path, req.Body, uploaded))
	if err != nil {
		return "", err
	}
	if req.Kind == media.Audio && req.Body != "" {
		return e.captionAfterAudio(id, func() error {
			_, err := e.send(ctx, client, jid, textMessage(req.Body))
			return err
		}), nil
	}
	return id, nil
}

// captionAfterAudio sends the caption of an already delivered audio message.
// The audio id is returned either way so a retry never sends the audio twice.
func (e *Engine) captionAfterAudio(id string, sendCaption func() error) string {
	if err := sendCaption(); err != nil {
		e.log.Errorf("audio %s sent but caption failed: %v", id, err)
	}
	return id
}

func (e *Engine) send(ctx context.Context, client *whatsmeow.Client, jid types.JID, msg *waE2E.Message) (string, error) {
	resp, err := client.SendMessage(ctx, jid, msg)
	if err != nil {
		return "", fmt.Errorf("Failed to send message: %w", err)
	}
	events.Engine.Log("whatsmeow", "INFO", "sent "+string(resp.ID))
	return string(resp.ID), nil
}

// Close disconnects the client and releases the device store.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	client, container, cancel := e.client, e.container, e.cancel
	e.ready = false
	e.mu.Unlock()

	if client != nil {
		client.Disconnect()
	}
	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
	e.Emitter.Close()
	if container != nil {
		return container.Close()
	}
	return nil
}

var _ engine.Engine = (*Engine)(nil)
