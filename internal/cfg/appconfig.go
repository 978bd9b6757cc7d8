package cfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/spf13/viper"

	"mediavault/internal/domain/keys"
	"mediavault/internal/domain/paths"
	"mediavault/internal/logging"
	"mediavault/internal/models"
)

var (
	appCfgMu sync.Mutex
	appCfg   *models.AppConfig
)

// ActiveConfig returns the process-wide configuration, loading the document
// on first use.
func ActiveConfig() *models.AppConfig {
	appCfgMu.Lock()
	defer appCfgMu.Unlock()
	if appCfg == nil {
		appCfg = loadAppConfig()
	}
	return appCfg
}

// loadAppConfig reads the configuration document, falling back to defaults
// for an absent file. Unknown keys in the document are ignored; a malformed
// document degrades to defaults with a warning rather than aborting.
func loadAppConfig() *models.AppConfig {
	def := models.DefaultConfig(paths.DefaultDownloadRoot)

	v := viper.New()
	v.SetConfigFile(paths.ConfigFilePath)
	v.SetConfigType("json")
	setConfigDefaults(v, def)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.W("Failed to read config file %q, using defaults: %v", paths.ConfigFilePath, err)
		}
		return def
	}

	cfg := &models.AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		logging.W("Failed to parse config file %q, using defaults: %v", paths.ConfigFilePath, err)
		return def
	}
	return cfg
}

func setConfigDefaults(v *viper.Viper, def *models.AppConfig) {
	v.SetDefault(keys.DownloadPath, def.DownloadPath)
	v.SetDefault(keys.AutoDownload, def.AutoDownload)
	v.SetDefault(keys.AutoTranscribe, def.AutoTranscribe)
	v.SetDefault(keys.TranscriptionModel, def.TranscriptionModel)
	v.SetDefault(keys.TranscriptionFormat, def.TranscriptionFormat)
	v.SetDefault(keys.TranscriptionLanguage, def.TranscriptionLanguage)
	v.SetDefault(keys.DownloadVideos, def.DownloadVideos)
	v.SetDefault(keys.DownloadDocuments, def.DownloadDocuments)
	v.SetDefault(keys.DownloadPhotos, def.DownloadPhotos)
	v.SetDefault(keys.MaxConcurrentDownloads, def.MaxConcurrentDownloads)
	v.SetDefault(keys.ExcludePatterns, def.ExcludePatterns)
}

// SaveAppConfig writes the configuration document and replaces the cached
// copy.
func SaveAppConfig(cfg *models.AppConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(paths.ConfigFilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %q: %w", paths.ConfigFilePath, err)
	}

	appCfgMu.Lock()
	appCfg = cfg
	appCfgMu.Unlock()

	logging.S("Saved configuration to %s", paths.ConfigFilePath)
	return nil
}
