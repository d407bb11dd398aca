package util

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	Version   string
	BuildDate string
	Commit    string

	// Target selects the compilation path: "native" or "source".
	Target string `toml:"target"`
	// CachePath locates the declaration cache. Empty keeps it in memory.
	CachePath string `toml:"cache_path"`
	// HistoryFile is where the repl persists input history.
	HistoryFile string `toml:"history_file"`
	// AllowNativeReturn sets the initial root of *allow-native-return*.
	AllowNativeReturn bool `toml:"allow_native_return"`
}

func DefaultConfiguration() Configuration {
	home, _ := os.UserHomeDir()
	return Configuration{
		Target:      "native",
		HistoryFile: filepath.Join(home, ".opal_history"),
	}
}

// LoadConfiguration reads a toml config file over the defaults. A missing
// file is not an error; explicit paths that fail to parse are.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
