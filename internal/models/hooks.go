package models

// DownloadHooks holds the optional callback slots the download orchestrator
// fires toward the UI layer. Every slot may be nil; each fires at most once
// per transition.
type DownloadHooks struct {
	OnProgress      func(filename string, currentPct, totalPct int)
	OnFileComplete  func(rec *FileRecord)
	OnBatchComplete func(stats DownloadStats, totals RunTotals)
	OnError         func(filename, message string)
}

// TranscribeHooks holds the optional callback slots the transcription
// orchestrator fires toward the UI layer.
type TranscribeHooks struct {
	OnProgress      func(filename string, fraction float64)
	OnFileComplete  func(videoPath, transcriptPath string)
	OnBatchComplete func(completed, failed int)
	OnError         func(filename, message string)
}
