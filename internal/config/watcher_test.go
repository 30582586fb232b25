package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := SaveTo(path, DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 8)
	if err := Watch(ctx, path, func(cfg Config) { changes <- cfg }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := SaveRefreshIntervalTo(path, 5); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case cfg := <-changes:
			if cfg.RefreshIntervalSeconds == 5 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for config reload")
		}
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 8)
	if err := Watch(ctx, path, func(cfg Config) { changes <- cfg }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := SaveTo(filepath.Join(dir, "other.json"), DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changes:
		t.Fatalf("unexpected reload: %+v", cfg)
	case <-time.After(4 * watchDebounce):
	}
}
