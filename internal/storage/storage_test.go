package storage

import (
	"os"
	"testing"
)

func TestDefaultSessionOptions(t *testing.T) {
	opts := DefaultSessionOptions()
	if opts.HashSizeMB != 64 {
		t.Errorf("Expected default hash size 64, got %d", opts.HashSizeMB)
	}
	if opts.EvalFile != "" {
		t.Errorf("Expected empty default eval file, got %q", opts.EvalFile)
	}
}

func TestBookUsageHitRate(t *testing.T) {
	stats := NewBookUsageStats()
	if rate := stats.HitRate(); rate != 0 {
		t.Errorf("Expected 0 hit rate for empty stats, got %.2f", rate)
	}

	stats.Hits = 3
	stats.Misses = 1
	if rate := stats.HitRate(); rate != 0.75 {
		t.Errorf("Expected 0.75 hit rate, got %.2f", rate)
	}
}

func TestStorageSessionOptionsRoundTrip(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	s, err := NewStorage()
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	defer s.Close()

	saved := &SessionOptions{HashSizeMB: 256, EvalFile: "chessplay.nnue"}
	if err := s.SaveSessionOptions(saved); err != nil {
		t.Fatalf("SaveSessionOptions failed: %v", err)
	}

	loaded, err := s.LoadSessionOptions()
	if err != nil {
		t.Fatalf("LoadSessionOptions failed: %v", err)
	}
	if loaded.HashSizeMB != 256 || loaded.EvalFile != "chessplay.nnue" {
		t.Errorf("Loaded options don't match: %+v", loaded)
	}
}

func TestStorageBookUsageRoundTrip(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	s, err := NewStorage()
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	defer s.Close()

	if err := s.RecordBookProbe(true); err != nil {
		t.Fatalf("RecordBookProbe failed: %v", err)
	}
	if err := s.RecordBookProbe(false); err != nil {
		t.Fatalf("RecordBookProbe failed: %v", err)
	}

	stats, err := s.LoadBookUsage()
	if err != nil {
		t.Fatalf("LoadBookUsage failed: %v", err)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %+v", stats)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	t.Logf("Data directory: %s", dataDir)
}
