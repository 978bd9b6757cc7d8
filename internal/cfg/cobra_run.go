package cfg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mediavault/internal/auth"
	"mediavault/internal/logging"
	"mediavault/internal/models"
)

// scanCmd enumerates both remote sources and merges the results into the
// state store without downloading anything.
func scanCmd(ctx context.Context, s *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan remote sources for new files",
		Long:  "Enumerate both remote sources and record newly discovered files without downloading.",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := s.Downloader.Scan(ctx)
			if err != nil {
				if errors.Is(err, auth.ErrNotAuthenticated) {
					return fmt.Errorf("not authenticated: place a valid token file first")
				}
				return err
			}

			for _, srcErr := range result.SourceErrs {
				logging.W("Source scan failed: %v", srcErr)
			}

			fmt.Printf("Found %d file(s) in file storage, %d video(s) in photo library\n",
				result.DriveFound, result.PhotosFound)
			printStats(result.Stats)
			return nil
		},
	}
}

// downloadCmd scans, then runs the transfer loop to completion. Ctrl-C stops
// the loop cleanly.
func downloadCmd(ctx context.Context, s *Services) *cobra.Command {
	var skipScan bool

	dlCmd := &cobra.Command{
		Use:   "download",
		Short: "Download all pending files",
		Long:  "Scan both sources, then download every pending file sequentially.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !skipScan {
				result, err := s.Downloader.Scan(ctx)
				if err != nil {
					if errors.Is(err, auth.ErrNotAuthenticated) {
						return fmt.Errorf("not authenticated: place a valid token file first")
					}
					return err
				}
				for _, srcErr := range result.SourceErrs {
					logging.W("Source scan failed: %v", srcErr)
				}
			}

			doneCh := make(chan struct{})
			s.Downloader.SetHooks(models.DownloadHooks{
				OnBatchComplete: func(st models.DownloadStats, totals models.RunTotals) {
					fmt.Printf("Done: %d downloaded, %d skipped, %d errored\n",
						totals.Downloaded, totals.Skipped, totals.Errored)
					printStats(st)
					close(doneCh)
				},
				OnError: func(filename, message string) {
					logging.E("Failed %q: %s", filename, message)
				},
			})

			s.Downloader.Start(ctx)
			return waitOrStop(ctx, doneCh, s.Downloader.Stop)
		},
	}

	dlCmd.Flags().BoolVar(&skipScan, "skip-scan", false, "Download pending files without rescanning first")

	return dlCmd
}

// transcribeCmd runs the transcription loop over every downloaded video
// without a transcript.
func transcribeCmd(ctx context.Context, s *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe downloaded videos",
		Long:  "Run speech-to-text over every downloaded video that has no transcript yet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			doneCh := make(chan struct{})
			s.Transcriber.SetHooks(models.TranscribeHooks{
				OnFileComplete: func(videoPath, transcriptPath string) {
					fmt.Printf("Transcribed %s -> %s\n", videoPath, transcriptPath)
				},
				OnBatchComplete: func(completed, failed int) {
					fmt.Printf("Done: %d transcribed, %d failed\n", completed, failed)
					close(doneCh)
				},
				OnError: func(filename, message string) {
					logging.E("Failed %q: %s", filename, message)
				},
			})

			s.Transcriber.Start(ctx)
			return waitOrStop(ctx, doneCh, s.Transcriber.Stop)
		},
	}
}

// waitOrStop blocks until the batch finishes or the context is cancelled, in
// which case stop runs and the wait resumes briefly for the loop to wind
// down.
func waitOrStop(ctx context.Context, doneCh <-chan struct{}, stop func()) error {
	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		logging.I("Interrupt received, stopping...")
		stop()
		select {
		case <-doneCh:
		case <-time.After(time.Second):
		}
		return nil
	}
}
