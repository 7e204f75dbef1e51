package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskStore(t *testing.T) {
	t.Run("write then read", func(t *testing.T) {
		st := NewDiskStore(t.TempDir())
		if err := st.WriteFile("out/api.yaml", []byte("openapi: 3.0.3\n")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		got, err := st.ReadFile("out/api.yaml")
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(got) != "openapi: 3.0.3\n" {
			t.Errorf("ReadFile() = %q, want %q", got, "openapi: 3.0.3\n")
		}
	})

	t.Run("path escapes root", func(t *testing.T) {
		st := NewDiskStore(t.TempDir())
		if _, err := st.ReadFile("../secret.yaml"); err == nil {
			t.Error("ReadFile() error = nil, want error for escaping path")
		}
		if err := st.WriteFile("../secret.yaml", nil); err == nil {
			t.Error("WriteFile() error = nil, want error for escaping path")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		st := NewDiskStore(t.TempDir())
		_, err := st.ReadFile("nope.json")
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("ReadFile() error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("read-only", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "api.json"), []byte("{}"), 0666); err != nil {
			t.Fatalf("Failed to write temp file: %v", err)
		}
		st := NewReadOnlyDiskStore(dir)
		if _, err := st.ReadFile("api.json"); err != nil {
			t.Errorf("ReadFile() error = %v", err)
		}
		if err := st.WriteFile("api.json", []byte("{}")); !errors.Is(err, ErrReadOnly) {
			t.Errorf("WriteFile() error = %v, want ErrReadOnly", err)
		}
	})
}
