package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alunbr/go-docsnap/internal/fileutil"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	t.Run("writes content", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.pdf")
		if err := fileutil.WriteAtomic(path, []byte("%PDF-data"), 0o644); err != nil {
			t.Fatalf("WriteAtomic() = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading back: %v", err)
		}
		if string(data) != "%PDF-data" {
			t.Errorf("content = %q", data)
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.pdf")
		if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := fileutil.WriteAtomic(path, []byte("new"), 0o644); err != nil {
			t.Fatalf("WriteAtomic() = %v", err)
		}

		data, _ := os.ReadFile(path)
		if string(data) != "new" {
			t.Errorf("content = %q, want %q", data, "new")
		}
	})

	t.Run("leaves no temp file behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "out.pdf")
		if err := fileutil.WriteAtomic(path, []byte("data"), 0o644); err != nil {
			t.Fatalf("WriteAtomic() = %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("dir has %d entries, want 1", len(entries))
		}
	})

	t.Run("missing directory is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nope", "out.pdf")
		if err := fileutil.WriteAtomic(path, []byte("data"), 0o644); err == nil {
			t.Error("WriteAtomic() = nil, want error")
		}
	})
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(path) {
		t.Error("FileExists(regular file) = false")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists(directory) = true")
	}
	if fileutil.FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists(missing) = true")
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"default", false},
		{"./custom.yaml", true},
		{"../shared/conf.yaml", true},
		{"/abs/path.yaml", true},
		{`C:\windows\conf.yaml`, true},
		{"my-config", false},
	}

	for _, tt := range tests {
		if got := fileutil.IsFilePath(tt.in); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	if !fileutil.IsURL("https://docs.example.com/a") {
		t.Error("IsURL(https) = false")
	}
	if !fileutil.IsURL("http://docs.example.com/a") {
		t.Error("IsURL(http) = false")
	}
	if fileutil.IsURL("ftp://example.com") {
		t.Error("IsURL(ftp) = true")
	}
	if fileutil.IsURL("docs/example.pdf") {
		t.Error("IsURL(path) = true")
	}
}
