// Package stats derives aggregate download statistics from the record
// collections.
package stats

import (
	"mediavault/internal/domain/consts"
	"mediavault/internal/models"
)

// Derive recomputes counts over both record collections.
//
// A record counts toward VideosAwaitingTranscription only when it is a
// completed video and no transcription record exists for its local path with
// a status other than pending. Collections are bounded by a user's media
// library size, so full recomputation per call is fine.
func Derive(drive, photos []*models.FileRecord, trans map[string]*models.TranscriptionRecord) models.DownloadStats {
	var s models.DownloadStats

	count := func(recs []*models.FileRecord) {
		for _, rec := range recs {
			s.Total++
			switch rec.Status {
			case consts.TransferComplete:
				s.Downloaded++
				if rec.IsVideo() && awaitingTranscription(rec, trans) {
					s.VideosAwaitingTranscription++
				}
			case consts.TransferPending, consts.TransferDownloading:
				s.Pending++
			case consts.TransferError:
				s.Errors++
			}
		}
	}

	count(drive)
	count(photos)
	return s
}

func awaitingTranscription(rec *models.FileRecord, trans map[string]*models.TranscriptionRecord) bool {
	if rec.LocalPath == "" {
		return false
	}
	tr, ok := trans[rec.LocalPath]
	if !ok {
		return true
	}
	return tr.Status == consts.TranscribePending
}
