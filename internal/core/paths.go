package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	DataDir     string
	LogFile     string
	JournalFile string
	ConfigFile  string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		dataDir := filepath.Join(homeDir, ".tars")
		if override := os.Getenv("TARS_HOME"); override != "" {
			dataDir = override
		}

		defaultPaths = &Paths{
			DataDir:     dataDir,
			LogFile:     filepath.Join(dataDir, "tars.log"),
			JournalFile: filepath.Join(dataDir, "journal.db"),
			ConfigFile:  filepath.Join(dataDir, "config.yaml"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func JournalFile() string {
	ensureDefaultPaths()
	return defaultPaths.JournalFile
}

func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}

// ResetPaths clears the cached paths, forcing them to be reinitialized.
// This is primarily used for testing purposes.
func ResetPaths() {
	defaultPaths = nil
}
