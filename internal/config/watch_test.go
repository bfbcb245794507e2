package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gorsp.conf")
	if err := os.WriteFile(path, []byte("addr=127.0.0.1:1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan Config, 4)

	w, err := Watch(path, func(cfg Config) { changes <- cfg })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("addr=127.0.0.1:2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changes:
		if cfg.Addr != "127.0.0.1:2" {
			t.Errorf("Addr = %q, want 127.0.0.1:2", cfg.Addr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
