// Package media classifies attachment paths by extension.
package media

import (
	"path/filepath"
	"strings"
)

// Kind is the media category an attachment is sent as.
type Kind int

const (
	Document Kind = iota
	Image
	Video
	Audio
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Video:
		return "video"
	case Audio:
		return "audio"
	default:
		return "document"
	}
}

var kinds = map[string]Kind{
	"jpg":  Image,
	"jpeg": Image,
	"png":  Image,
	"gif":  Image,
	"webp": Image,
	"mp4":  Video,
	"mov":  Video,
	"avi":  Video,
	"mkv":  Video,
	"mp3":  Audio,
	"ogg":  Audio,
	"wav":  Audio,
	"m4a":  Audio,
}

var mimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
	"mp3":  "audio/mpeg",
	"ogg":  "audio/ogg",
	"wav":  "audio/wav",
	"m4a":  "audio/mp4",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"zip":  "application/zip",
	"txt":  "text/plain",
}

// fallback MIME type per kind when the extension is missing from mimeTypes.
var kindFallback = map[Kind]string{
	Image:    "image/jpeg",
	Video:    "video/mp4",
	Audio:    "audio/mpeg",
	Document: "application/octet-stream",
}

// PickerExtensions is the allow-list offered by the attachment picker. It
// covers every extension the kind table knows plus common documents.
var PickerExtensions = []string{
	"jpg", "jpeg", "png", "gif", "webp",
	"mp4", "mov", "avi", "mkv",
	"mp3", "ogg", "wav", "m4a",
	"pdf", "doc", "docx", "xls", "xlsx", "txt", "zip",
}

// Extension returns the lower-cased extension of path without the dot.
func Extension(path string) string {
	ext := filepath.Ext(strings.TrimSpace(path))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Classify derives the media kind from the path extension. Anything
// unrecognised, including paths without an extension, is a Document.
func Classify(path string) Kind {
	if kind, ok := kinds[Extension(path)]; ok {
		return kind
	}
	return Document
}

// MIMEType returns the content type used when uploading path.
func MIMEType(path string) string {
	ext := Extension(path)
	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return kindFallback[Classify(path)]
}

// Selectable reports whether the picker allow-list admits path.
func Selectable(path string) bool {
	ext := Extension(path)
	if ext == "" {
		return false
	}
	for _, allowed := range PickerExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
