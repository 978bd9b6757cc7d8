// Package main is the entrypoint of MediaVault.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mediavault/internal/app"
	"mediavault/internal/auth"
	"mediavault/internal/cfg"
	"mediavault/internal/database"
	"mediavault/internal/domain/paths"
	"mediavault/internal/logging"
	"mediavault/internal/models"
	"mediavault/internal/repo"
	"mediavault/internal/sources/drive"
	"mediavault/internal/sources/photos"
	"mediavault/internal/state"
	"mediavault/internal/transcribe"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mediavault exiting with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// MEDIAVAULT_CONFIG_DIR overrides the default user config location.
	if err := paths.InitProgFilesDirs(os.Getenv("MEDIAVAULT_CONFIG_DIR")); err != nil {
		return err
	}

	if err := logging.Setup(paths.LogFilePath, 0); err != nil {
		return err
	}
	defer logging.Close()

	db, err := database.InitDB(paths.DBFilePath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer cancel()

	authMgr := auth.NewManager(paths.TokenFilePath)

	driveSrc := drive.New(func() (drive.Service, error) {
		return drive.NewHTTPService(authMgr.Token), nil
	})
	photosSrc := photos.New(func() (photos.Service, error) {
		return photos.NewHTTPService(authMgr.Token), nil
	})

	store := state.NewStore(
		paths.DriveStateFilePath,
		paths.PhotosStateFilePath,
		paths.TransStateFilePath,
	)
	journal := repo.GetJournalStore(db.DB)

	cfgFn := func() *models.AppConfig { return cfg.ActiveConfig() }

	engine := transcribe.NewEngine(paths.ModelCacheDir)
	transcriber := app.NewTranscriber(store, journal, engine, cfgFn)
	downloader := app.NewDownloader(store, journal, authMgr, driveSrc, photosSrc, cfgFn)
	downloader.SetFinishedFunc(func(ctx context.Context) {
		logging.I("Auto-transcribe enabled, starting transcription")
		transcriber.Start(ctx)
	})

	services := &cfg.Services{
		Store:       store,
		Journal:     journal,
		Auth:        authMgr,
		Downloader:  downloader,
		Transcriber: transcriber,
	}

	if err := cfg.InitCommands(ctx, services); err != nil {
		return err
	}
	return cfg.Execute()
}
