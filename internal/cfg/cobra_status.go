package cfg

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mediavault/internal/domain/consts"
	"mediavault/internal/models"
	"mediavault/internal/utils/format"
)

func printStats(st models.DownloadStats) {
	fmt.Printf("Total: %d | Downloaded: %d | Pending: %d | Errors: %d | Awaiting transcription: %d\n",
		st.Total, st.Downloaded, st.Pending, st.Errors, st.VideosAwaitingTranscription)
}

// statusCmd prints the aggregate counts over both record collections.
func statusCmd(s *Services) *cobra.Command {
	var asJSON bool

	stCmd := &cobra.Command{
		Use:   "status",
		Short: "Show download and transcription status",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := s.Downloader.Statistics()

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}

			printStats(st)

			if errored := erroredRecords(s); len(errored) > 0 {
				fmt.Println("\nFailed files:")
				for _, rec := range errored {
					fmt.Printf("  %-40s %s\n", rec.Name, rec.ErrorMessage)
				}
			}
			return nil
		},
	}

	stCmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return stCmd
}

func erroredRecords(s *Services) []*models.FileRecord {
	var errored []*models.FileRecord
	for _, kind := range []consts.SourceKind{consts.SourceDrive, consts.SourcePhotos} {
		for _, rec := range s.Store.Records(kind) {
			if rec.Status == consts.TransferError {
				errored = append(errored, rec)
			}
		}
	}
	return errored
}

// historyCmd prints recent journal runs, optionally with per-item events.
func historyCmd(s *Services) *cobra.Command {
	var (
		rows   int
		events bool
	)

	histCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent download and transcription runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := s.Journal.RecentRuns(rows)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}

			for _, run := range runs {
				status := "running"
				if run.EndedAt != nil {
					status = fmt.Sprintf("%d ok, %d skipped, %d errored",
						run.Downloaded, run.Skipped, run.Errored)
				}
				fmt.Printf("%s  %-10s  %-12s  %s\n",
					run.ID[:8], run.Type, format.RelativeTime(run.StartedAt), status)

				if !events {
					continue
				}
				evs, err := s.Journal.RunEvents(run.ID)
				if err != nil {
					return err
				}
				for _, ev := range evs {
					fmt.Printf("    %-20s %-40s %s\n", ev.Event, ev.ItemName, ev.Detail)
				}
			}
			return nil
		},
	}

	histCmd.Flags().IntVar(&rows, "rows", 10, "Number of runs to show")
	histCmd.Flags().BoolVar(&events, "events", false, "Show per-file events for each run")

	return histCmd
}
