// Package keys holds viper and flag key constants.
package keys

// Terminal keys.
const (
	DebugLevel  string = "debug-level"
	ConfigDir   string = "config-dir"
	OutputJSON  string = "json"
	HistoryRows string = "rows"
)

// AppConfig document keys.
//
// These match the field names of the persisted configuration document,
// do not alter.
const (
	DownloadPath           string = "download_path"
	AutoDownload           string = "auto_download"
	AutoTranscribe         string = "auto_transcribe"
	TranscriptionModel     string = "transcription_model"
	TranscriptionFormat    string = "transcription_output_format"
	TranscriptionLanguage  string = "transcription_language"
	DownloadVideos         string = "download_videos"
	DownloadDocuments      string = "download_documents"
	DownloadPhotos         string = "download_photos"
	MaxConcurrentDownloads string = "max_concurrent_downloads"
	ExcludePatterns        string = "exclude_patterns"
)
