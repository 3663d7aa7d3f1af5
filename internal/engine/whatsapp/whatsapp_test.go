package whatsapp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atomicstack/walink/internal/engine"
	"github.com/atomicstack/walink/internal/logging"
	"github.com/atomicstack/walink/internal/media"
	"go.mau.fi/whatsmeow"
	waEvents "go.mau.fi/whatsmeow/types/events"
)

func TestHandleEventMapsStreams(t *testing.T) {
	e := New(t.TempDir())
	defer e.Close()
	var got []engine.EventName
	for _, name := range []engine.EventName{engine.EventQRCode, engine.EventAuthSuccess} {
		if _, err := e.Subscribe(name, func(evt engine.Event) { got = append(got, evt.Name) }); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	e.handleEvent(&waEvents.PairSuccess{})
	if ready, _ := e.IsReady(context.Background()); ready {
		t.Fatalf("pairing alone must not mark ready")
	}
	e.handleEvent(&waEvents.Connected{})
	if ready, _ := e.IsReady(context.Background()); !ready {
		t.Fatalf("expected ready after connected")
	}
	e.handleEvent(&waEvents.Disconnected{})
	if ready, _ := e.IsReady(context.Background()); ready {
		t.Fatalf("expected not ready after disconnect")
	}
	e.handleEvent(&waEvents.Connected{})
	e.handleEvent(&waEvents.LoggedOut{})
	if ready, _ := e.IsReady(context.Background()); ready {
		t.Fatalf("expected not ready after logout")
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 auth-success events, got %v", got)
	}
	for _, name := range got {
		if name != engine.EventAuthSuccess {
			t.Fatalf("unexpected stream %s", name)
		}
	}
}

func TestSendBeforeInitialize(t *testing.T) {
	e := New(t.TempDir())
	defer e.Close()
	if _, err := e.SendText(context.Background(), "123", "hi"); !errors.Is(err, engine.ErrNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
	if _, err := e.SendMedia(context.Background(), engine.MediaRequest{Contact: "123", Path: "x.png"}); !errors.Is(err, engine.ErrNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
}

func TestStorePath(t *testing.T) {
	dir := t.TempDir()
	if got := New(dir).StorePath(); got != filepath.Join(dir, "whatsapp.db") {
		t.Fatalf("unexpected store path %s", got)
	}
}

func TestMediaType(t *testing.T) {
	tests := map[media.Kind]whatsmeow.MediaType{
		media.Image:    whatsmeow.MediaImage,
		media.Video:    whatsmeow.MediaVideo,
		media.Audio:    whatsmeow.MediaAudio,
		media.Document: whatsmeow.MediaDocument,
	}
	for kind, want := range tests {
		if got := mediaType(kind); got != want {
			t.Fatalf("%s: expected %v, got %v", kind, want, got)
		}
	}
}

func TestMediaMessage(t *testing.T) {
	up := whatsmeow.UploadResponse{URL: "https://mmg/x", DirectPath: "/v/x", FileLength: 42}

	img := mediaMessage(media.Image, "/tmp/photo.PNG", "look", up)
	if img.GetImageMessage() == nil || img.GetImageMessage().GetCaption() != "look" {
		t.Fatalf("expected captioned image, got %v", img)
	}
	if img.GetImageMessage().GetMimetype() != "image/png" || img.GetImageMessage().GetFileLength() != 42 {
		t.Fatalf("unexpected image fields %v", img.GetImageMessage())
	}

	doc := mediaMessage(media.Document, "/tmp/report.pdf", "", up)
	d := doc.GetDocumentMessage()
	if d == nil || d.GetFileName() != "report.pdf" || d.GetMimetype() != "application/pdf" {
		t.Fatalf("unexpected document %v", d)
	}
	if d.Caption != nil {
		t.Fatalf("expected no caption for empty body")
	}

	audio := mediaMessage(media.Audio, "/tmp/voice.ogg", "ignored", up)
	if audio.GetAudioMessage() == nil || audio.GetAudioMessage().GetMimetype() != "audio/ogg" {
		t.Fatalf("unexpected audio %v", audio)
	}

	if vid := mediaMessage(media.Video, "/tmp/clip.mkv", "", up); vid.GetVideoMessage().GetMimetype() != "video/x-matroska" {
		t.Fatalf("unexpected video %v", vid)
	}

	if txt := textMessage("hello"); txt.GetExtendedTextMessage().GetText() != "hello" {
		t.Fatalf("unexpected text message %v", txt)
	}
}

func TestLoggerSub(t *testing.T) {
	l := newLogger("whatsmeow").Sub("client").Sub("socket")
	if got := l.(logger).module; got != "whatsmeow/client/socket" {
		t.Fatalf("unexpected module %q", got)
	}
}

func TestCaptionFailureKeepsAudioID(t *testing.T) {
	prev := logging.Path()
	logPath := filepath.Join(t.TempDir(), "walink.log")
	logging.Configure(logPath)
	t.Cleanup(func() { logging.Configure(prev) })

	e := New(t.TempDir())
	defer e.Close()
	calls := 0
	id := e.captionAfterAudio("AUDIO1", func() error {
		calls++
		return errors.New("socket closed")
	})
	if id != "AUDIO1" || calls != 1 {
		t.Fatalf("unexpected id %q after %d caption calls", id, calls)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "caption failed: socket closed") {
		t.Fatalf("expected caption failure logged, got:\n%s", data)
	}
}
