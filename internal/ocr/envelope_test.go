package ocr

import (
	"encoding/json"
	"testing"
)

func TestDeriveExtension(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
		want     string
	}{
		{"no dot defaults to jpg", "receipt", "jpg"},
		{"lowercase kept", "receipt.png", "png"},
		{"uppercase lowered", "Receipt.PNG", "png"},
		{"mixed case", "scan.TiFf", "tiff"},
		{"last dot wins", "receipt.backup.jpeg", "jpeg"},
		{"trailing dot yields empty", "receipt.", ""},
		{"unknown passes through", "receipt.exe", "exe"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveExtension(tc.fileName); got != tc.want {
				t.Fatalf("DeriveExtension(%q) = %q, want %q", tc.fileName, got, tc.want)
			}
		})
	}
}

func TestExtensionAllowed(t *testing.T) {
	for _, ext := range []string{"jpg", "jpeg", "png", "tif", "tiff", "pdf"} {
		if !ExtensionAllowed(ext) {
			t.Fatalf("expected %q to be allowed", ext)
		}
	}
	for _, ext := range []string{"exe", "gif", "JPG", "", "docx"} {
		if ExtensionAllowed(ext) {
			t.Fatalf("expected %q to be rejected", ext)
		}
	}
}

func TestNewEnvelopeShape(t *testing.T) {
	env := newEnvelope("png")

	if env.Version != "V2" {
		t.Fatalf("expected version V2, got %s", env.Version)
	}
	if env.RequestID == "" {
		t.Fatalf("expected fresh requestId")
	}
	if env.Timestamp <= 0 {
		t.Fatalf("expected positive timestamp, got %d", env.Timestamp)
	}
	if len(env.Images) != 1 {
		t.Fatalf("expected exactly one image, got %d", len(env.Images))
	}
	if env.Images[0].Format != "png" || env.Images[0].Name != "receipt" {
		t.Fatalf("unexpected image entry: %+v", env.Images[0])
	}

	other := newEnvelope("png")
	if other.RequestID == env.RequestID {
		t.Fatalf("expected a fresh requestId per envelope")
	}

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	for _, key := range []string{"version", "requestId", "timestamp", "images"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("expected key %q in serialized envelope", key)
		}
	}
}
