package whatsapp

import (
	"path/filepath"

	"github.com/atomicstack/walink/internal/media"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/proto"
)

func textMessage(body string) *waE2E.Message {
	return &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text: proto.String(body),
		},
	}
}

func mediaType(kind media.Kind) whatsmeow.MediaType {
	switch kind {
	case media.Image:
		return whatsmeow.MediaImage
	case media.Video:
		return whatsmeow.MediaVideo
	case media.Audio:
		return whatsmeow.MediaAudio
	default:
		return whatsmeow.MediaDocument
	}
}

// mediaMessage wraps an uploaded file. Audio messages carry no caption, so
// the caller sends the body separately.
func mediaMessage(kind media.Kind, path, caption string, up whatsmeow.UploadResponse) *waE2E.Message {
	mime := proto.String(media.MIMEType(path))
	var text *string
	if caption != "" {
		text = proto.String(caption)
	}
	switch kind {
	case media.Image:
		return &waE2E.Message{ImageMessage: &waE2E.ImageMessage{
			Caption:       text,
			Mimetype:      mime,
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	case media.Video:
		return &waE2E.Message{VideoMessage: &waE2E.VideoMessage{
			Caption:       text,
			Mimetype:      mime,
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	case media.Audio:
		return &waE2E.Message{AudioMessage: &waE2E.AudioMessage{
			Mimetype:      mime,
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	default:
		name := filepath.Base(path)
		return &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
			Caption:       text,
			Title:         proto.String(name),
			FileName:      proto.String(name),
			Mimetype:      mime,
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	}
}
