package ai

import (
	"bytes"
	"testing"
)

func TestImageRoundTrip(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0xdb, 0x00}

	image := NewJPEG(raw)
	if image.MIMEType != MIMETypeJPEG {
		t.Fatalf("unexpected mime type: %s", image.MIMEType)
	}
	if image.Data != "/9j/2wA=" {
		t.Fatalf("unexpected base64 payload: %s", image.Data)
	}

	decoded, err := image.Bytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Fatalf("expected %v, got %v", raw, decoded)
	}
}

func TestImageBytesErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]Image{
		"missing mime type": {Data: "AAAA"},
		"empty payload":     {MIMEType: MIMETypeJPEG},
		"invalid base64":    {MIMEType: MIMETypeJPEG, Data: "not base64!"},
	}

	for name, image := range tests {
		if _, err := image.Bytes(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
