// Package consts holds various global, unchanging values.
package consts

// Source kinds.
type SourceKind string

const (
	SourceDrive  SourceKind = "drive"
	SourcePhotos SourceKind = "photos"
)

// Transfer statuses for a remote item.
type TransferStatus string

const (
	TransferPending     TransferStatus = "pending"
	TransferDownloading TransferStatus = "downloading"
	TransferComplete    TransferStatus = "complete"
	TransferError       TransferStatus = "error"
)

// Transcription statuses for a downloaded video.
type TranscribeStatus string

const (
	TranscribePending       TranscribeStatus = "pending"
	TranscribeActive        TranscribeStatus = "transcribing"
	TranscribeComplete      TranscribeStatus = "complete"
	TranscribeError         TranscribeStatus = "error"
	TranscribeNotApplicable TranscribeStatus = "n/a"
)

// VideoMimeTypes is the allow-list of video MIME types to download.
var VideoMimeTypes = [...]string{
	"video/mp4",
	"video/quicktime",
	"video/x-msvideo",
	"video/webm",
	"video/3gpp",
	"video/mpeg",
	"video/x-matroska",
	"video/x-ms-wmv",
	"video/x-flv",
}

// DocumentMimeTypes is the allow-list of document MIME types to download.
var DocumentMimeTypes = [...]string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// ExportFormat maps a proprietary workspace document type to its server-side
// export MIME type and the file extension the exported artifact must carry.
type ExportFormat struct {
	Mime string
	Ext  string
}

// WorkspaceExportMap contains export formats for proprietary workspace document types.
var WorkspaceExportMap = map[string]ExportFormat{
	"application/vnd.google-apps.document": {
		Mime: "application/pdf",
		Ext:  ".pdf",
	},
	"application/vnd.google-apps.spreadsheet": {
		Mime: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Ext:  ".xlsx",
	},
	"application/vnd.google-apps.presentation": {
		Mime: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		Ext:  ".pptx",
	},
}

// WhisperModels maps the user-facing model size to the concrete model name.
var WhisperModels = map[string]string{
	"tiny":   "tiny",
	"base":   "base",
	"small":  "small",
	"medium": "medium",
	"large":  "large-v3",
}

// Transcript output formats.
const (
	FormatTXT  = "txt"
	FormatSRT  = "srt"
	FormatVTT  = "vtt"
	FormatBoth = "both"
)

// Journal event names.
const (
	EventTransferStarted    = "transfer_started"
	EventTransferComplete   = "transfer_complete"
	EventTransferSkipped    = "transfer_skipped"
	EventTransferFailed     = "transfer_failed"
	EventTranscribeStarted  = "transcribe_started"
	EventTranscribeComplete = "transcribe_complete"
	EventTranscribeFailed   = "transcribe_failed"
)

// Run types recorded in the journal.
const (
	RunTypeDownload   = "download"
	RunTypeTranscribe = "transcribe"
)

// Directory and file permissions.
const (
	PermsProgDir    = 0o755
	PermsGenericDir = 0o755
	PermsStateFile  = 0o644
)
