package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/uci"
)

// defaultNet is the NNUE weights file name looked up in the standard
// search locations when no eval file is set via UCI option.
const defaultNet = "chessplay.nnue"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	// Create engine with 64MB hash table. The core search is single-threaded.
	eng := engine.NewEngine(64)

	// Auto-load NNUE weights from standard locations, falling back to the
	// randomly-initialized evaluator baked into NewEngine.
	if err := autoLoadNNUE(eng); err != nil {
		log.Printf("Warning: NNUE weights not found: %v (using default network)", err)
	}

	// Create and run UCI protocol handler
	protocol := uci.New(eng)
	protocol.Run()
}

// autoLoadNNUE attempts to load NNUE weights from standard locations.
func autoLoadNNUE(eng *engine.Engine) error {
	searchPaths := []string{
		getAppSupportDir(),
		filepath.Join(getHomeDir(), ".chessplay", "nnue"),
		"./nnue",
		".",
	}

	for _, dir := range searchPaths {
		path := filepath.Join(dir, defaultNet)
		if !fileExists(path) {
			continue
		}
		if err := eng.LoadNNUE(path); err != nil {
			log.Printf("Failed to load NNUE from %s: %v", path, err)
			continue
		}
		log.Printf("NNUE loaded from %s", path)
		return nil
	}

	return os.ErrNotExist
}

// getAppSupportDir returns the application support directory for chessplay.
func getAppSupportDir() string {
	home := getHomeDir()
	return filepath.Join(home, "Library", "Application Support", "chessplay", "nnue")
}

// getHomeDir returns the user's home directory.
func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
