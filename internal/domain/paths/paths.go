// Package paths initializes mediavault's filepaths, directories, etc.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mediavault/internal/domain/consts"
)

const (
	progDir      = "mediavault"
	dbFile       = "mediavault.db"
	logFile      = "mediavault.log"
	configFile   = "config.json"
	tokenFile    = "token.json"
	stateDirName = "state"
	cacheDirName = "models"

	driveStateFile  = "drive_state.json"
	photosStateFile = "photos_state.json"
	transStateFile  = "transcription_state.json"
)

// File and directory path strings.
var (
	ConfigDir           string
	StateDir            string
	ModelCacheDir       string
	DBFilePath          string
	LogFilePath         string
	ConfigFilePath      string
	TokenFilePath       string
	DriveStateFilePath  string
	PhotosStateFilePath string
	TransStateFilePath  string
	DefaultDownloadRoot string
)

// InitProgFilesDirs initializes necessary program directories and filepaths.
//
// An explicit base overrides the user config dir (used by tests and the
// --config-dir flag).
func InitProgFilesDirs(base string) error {
	if base == "" {
		userCfg, err := os.UserConfigDir()
		if err != nil {
			return errors.New("failed to get user config directory")
		}
		base = filepath.Join(userCfg, progDir)
	}

	ConfigDir = base
	StateDir = filepath.Join(base, stateDirName)
	ModelCacheDir = filepath.Join(base, cacheDirName)

	for _, d := range []string{ConfigDir, StateDir, ModelCacheDir} {
		if _, err := os.Stat(d); os.IsNotExist(err) {
			if err := os.MkdirAll(d, consts.PermsProgDir); err != nil {
				return fmt.Errorf("failed to make directory %q: %w", d, err)
			}
		}
	}

	DBFilePath = filepath.Join(ConfigDir, dbFile)
	LogFilePath = filepath.Join(ConfigDir, logFile)
	ConfigFilePath = filepath.Join(ConfigDir, configFile)
	TokenFilePath = filepath.Join(ConfigDir, tokenFile)
	DriveStateFilePath = filepath.Join(StateDir, driveStateFile)
	PhotosStateFilePath = filepath.Join(StateDir, photosStateFile)
	TransStateFilePath = filepath.Join(StateDir, transStateFile)

	home, err := os.UserHomeDir()
	if err != nil {
		return errors.New("failed to get home directory")
	}
	DefaultDownloadRoot = filepath.Join(home, "MediaVault")

	return nil
}

// DriveVideosDir returns the videos subdirectory for file-storage downloads.
func DriveVideosDir(downloadRoot string) string {
	return filepath.Join(downloadRoot, "Videos", "Drive")
}

// PhotosVideosDir returns the videos subdirectory for photo-library downloads.
func PhotosVideosDir(downloadRoot string) string {
	return filepath.Join(downloadRoot, "Videos", "Photos")
}

// DocumentsDir returns the documents subdirectory for all non-video downloads.
func DocumentsDir(downloadRoot string) string {
	return filepath.Join(downloadRoot, "Documents")
}
