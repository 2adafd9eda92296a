package utils

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeDataURL(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	url := EncodeDataURL("image/png", payload)

	mimeType, data, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL() error: %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf("mimeType = %q, want image/png", mimeType)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("data = %v, want %v", data, payload)
	}
}

func TestDecodeDataURLRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not a data url", "data:image/png;base64"} {
		if _, _, err := DecodeDataURL(input); err == nil {
			t.Errorf("DecodeDataURL(%q) expected error", input)
		}
	}
}

func TestIsAllowedImageType(t *testing.T) {
	for _, allowed := range []string{"image/jpeg", "image/png", "image/gif"} {
		if !IsAllowedImageType(allowed) {
			t.Errorf("IsAllowedImageType(%q) = false", allowed)
		}
	}
	for _, denied := range []string{"image/svg+xml", "application/pdf", "text/html", ""} {
		if IsAllowedImageType(denied) {
			t.Errorf("IsAllowedImageType(%q) = true", denied)
		}
	}
}

func TestExtensionForMIME(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"image/gif":       ".gif",
		"image/webp":      ".jpg",
		"application/pdf": ".jpg",
	}
	for mimeType, want := range cases {
		if got := ExtensionForMIME(mimeType); got != want {
			t.Errorf("ExtensionForMIME(%q) = %q, want %q", mimeType, got, want)
		}
	}
}
