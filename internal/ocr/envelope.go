package ocr

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	protocolVersion  = "V2"
	imageLabel       = "receipt"
	defaultExtension = "jpg"
)

var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"pdf":  {},
}

type requestImage struct {
	Format string `json:"format"`
	Name   string `json:"name"`
}

// requestEnvelope is the upstream-facing request document. Built fresh per
// call and never persisted.
type requestEnvelope struct {
	Version   string         `json:"version"`
	RequestID string         `json:"requestId"`
	Timestamp int64          `json:"timestamp"`
	Images    []requestImage `json:"images"`
}

func newEnvelope(format string) requestEnvelope {
	return requestEnvelope{
		Version:   protocolVersion,
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
		Images:    []requestImage{{Format: format, Name: imageLabel}},
	}
}

// DeriveExtension returns the lowercased extension after the last dot of
// fileName, or the default when the name has no dot.
func DeriveExtension(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return defaultExtension
	}
	return strings.ToLower(fileName[idx+1:])
}

// ExtensionAllowed reports whether ext is accepted for relay.
func ExtensionAllowed(ext string) bool {
	_, ok := allowedExtensions[ext]
	return ok
}
