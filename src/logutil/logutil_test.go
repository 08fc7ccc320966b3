package logutil

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRedactKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "********"},
		{"short", "********"},
		{"sk-or-v1-abcdef123456", "sk-o...3456"},
	}
	for _, tt := range tests {
		if got := RedactKey(tt.in); got != tt.want {
			t.Errorf("RedactKey(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"line one\nline two", 0, "line one line two"},
		{"bell\x07", 0, "bell"},
		{"héllo wörld", 5, "héllo..."},
		{"abc", 5, "abc"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in, tt.limit); got != tt.want {
			t.Errorf("Sanitize(%q, %d) = %q, expected %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestSetupInWritesFile(t *testing.T) {
	dir := t.TempDir()
	defer log.SetOutput(os.Stderr)

	SetupIn(dir, true)
	log.Printf("hello from test")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message: %q", data)
	}
}

func TestRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LogFileName)
	for i := 0; i < maxArchives+2; i++ {
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0600); err != nil {
			t.Fatal(err)
		}
		rotate(path)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("base log should be moved away, stat err = %v", err)
	}
	if _, err := os.Stat(archiveName(path, maxArchives+1)); !os.IsNotExist(err) {
		t.Error("more archives than allowed were kept")
	}
	data, err := os.ReadFile(archiveName(path, 1))
	if err != nil || string(data) != string(rune('a'+maxArchives+1)) {
		t.Errorf("newest archive = %q, %v", data, err)
	}
}
