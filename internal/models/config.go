package models

// AppConfig holds process-wide settings, loaded once and mutated only through
// an explicit save.
//
// Field names match the persisted configuration document, do not alter.
type AppConfig struct {
	DownloadPath           string   `json:"download_path" mapstructure:"download_path"`
	AutoDownload           bool     `json:"auto_download" mapstructure:"auto_download"`
	AutoTranscribe         bool     `json:"auto_transcribe" mapstructure:"auto_transcribe"`
	TranscriptionModel     string   `json:"transcription_model" mapstructure:"transcription_model"`
	TranscriptionFormat    string   `json:"transcription_output_format" mapstructure:"transcription_output_format"`
	TranscriptionLanguage  string   `json:"transcription_language" mapstructure:"transcription_language"`
	DownloadVideos         bool     `json:"download_videos" mapstructure:"download_videos"`
	DownloadDocuments      bool     `json:"download_documents" mapstructure:"download_documents"`
	DownloadPhotos         bool     `json:"download_photos" mapstructure:"download_photos"`
	MaxConcurrentDownloads int      `json:"max_concurrent_downloads" mapstructure:"max_concurrent_downloads"` // Reserved, the transfer loop is sequential.
	ExcludePatterns        []string `json:"exclude_patterns" mapstructure:"exclude_patterns"`
}

// DefaultConfig returns the configuration used when no document exists.
func DefaultConfig(downloadRoot string) *AppConfig {
	return &AppConfig{
		DownloadPath:           downloadRoot,
		AutoDownload:           false,
		AutoTranscribe:         true,
		TranscriptionModel:     "small",
		TranscriptionFormat:    "txt",
		TranscriptionLanguage:  "en",
		DownloadVideos:         true,
		DownloadDocuments:      true,
		DownloadPhotos:         true,
		MaxConcurrentDownloads: 3,
		ExcludePatterns:        []string{"*.tmp", "*.part"},
	}
}
