package storage

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	key := GenerateKey("dossiers/42", "memoire.pdf")

	if !strings.HasPrefix(key, "dossiers/42/memoire_") {
		t.Fatalf("key %q missing prefix or base name", key)
	}
	if filepath.Ext(key) != ".pdf" {
		t.Errorf("key %q lost its extension", key)
	}

	// Two keys for the same filename must not collide
	other := GenerateKey("dossiers/42", "memoire.pdf")
	if key == other {
		t.Errorf("consecutive keys collide: %q", key)
	}
}

func TestGetContentType(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"memoire.pdf", "application/pdf"},
		{"photo.JPG", "image/jpeg"},
		{"photo.png", "image/png"},
		{"notes.txt", "text/plain"},
		{"archive.bin", "application/octet-stream"},
	}

	for _, tc := range cases {
		if got := GetContentType(tc.filename); got != tc.want {
			t.Errorf("GetContentType(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}
